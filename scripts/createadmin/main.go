package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/linesmerrill/casetrack-api/config"
	"github.com/linesmerrill/casetrack-api/databases"
	"github.com/linesmerrill/casetrack-api/models"
)

// Creates an administrator directly in the configured MongoDB database. It reads
// the same environment as the server, JWT_SECRET included.
// Usage: go run ./scripts/createadmin -email admin@saps.gov.za -said 8001015009087 -password <password>
func main() {
	email := flag.String("email", "", "login e-mail of the administrator")
	said := flag.String("said", "", "13 digit South African ID number")
	name := flag.String("name", "Administrator", "display name")
	phone := flag.String("phone", "0000000000", "contact number")
	password := flag.String("password", "", "initial password, at least 8 characters")
	flag.Parse()

	if *email == "" || len(*password) < 8 || !models.ValidSAID(*said) {
		flag.Usage()
		os.Exit(1)
	}

	conf, err := config.New()
	if err != nil {
		fmt.Printf("Error reading config: %v\n", err)
		os.Exit(1)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fmt.Printf("Error generating hash: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := databases.NewClient(conf)
	if err != nil {
		fmt.Printf("Error creating client: %v\n", err)
		os.Exit(1)
	}
	if err := client.Connect(ctx); err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer client.Disconnect(ctx)

	users := databases.NewUserDatabase(databases.NewDatabase(conf, client))
	if err := users.EnsureIndexes(ctx); err != nil {
		fmt.Printf("Error creating indexes: %v\n", err)
		os.Exit(1)
	}

	admin := models.User{
		ID:           uuid.NewString(),
		FullName:     *name,
		IDNumber:     *said,
		Phone:        *phone,
		Email:        *email,
		PasswordHash: string(hashedPassword),
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now(),
	}
	if err := users.InsertOne(ctx, admin); err != nil {
		fmt.Printf("Error creating administrator: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Administrator %s created with id %s\n", admin.Email, admin.ID)
}
