package cases

import (
	"fmt"
	"math/rand"
	"time"
)

const maxNumberAttempts = 10

// NumberGenerator returns a candidate case number for a case created at t
type NumberGenerator func(t time.Time) string

// RandomNumber returns CT-<year>-<six random digits>
func RandomNumber(t time.Time) string {
	return fmt.Sprintf("CT-%d-%06d", t.Year(), rand.Intn(1000000))
}
