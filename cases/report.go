package cases

import (
	"fmt"
	"strings"
	"time"

	"github.com/linesmerrill/casetrack-api/models"
)

const (
	reportDateLayout = "2 January 2006"
	reportRule       = "================================"
)

// ReportFilename is the download name of a case report
func ReportFilename(c models.Case) string {
	return c.CaseNumber + "-report.txt"
}

// Report renders the plain text case report handed to case participants
func Report(c models.Case, generatedAt time.Time) string {
	var b strings.Builder

	b.WriteString("SOUTH AFRICAN POLICE SERVICE\n")
	b.WriteString("CASE REPORT\n")
	b.WriteString(reportRule + "\n\n")

	fmt.Fprintf(&b, "Case Number: %s\n", c.CaseNumber)
	fmt.Fprintf(&b, "Type: %s\n", c.Type)
	fmt.Fprintf(&b, "Status: %s\n", c.StatusLabel)
	fmt.Fprintf(&b, "Priority: %s\n\n", strings.ToUpper(string(c.Priority)))

	fmt.Fprintf(&b, "Station: %s\n", orDefault(c.StationName, "Not assigned"))
	fmt.Fprintf(&b, "Assigned Officer: %s\n", orDefault(c.OfficerID, "Not yet assigned"))
	fmt.Fprintf(&b, "Location: %s\n\n", orDefault(c.Location, "Not specified"))

	fmt.Fprintf(&b, "Submitted: %s\n", c.SubmittedDate.Format(reportDateLayout))
	fmt.Fprintf(&b, "Last Update: %s\n", c.LastUpdate.Format(reportDateLayout))
	fmt.Fprintf(&b, "Progress: %d%%\n\n", c.Progress)

	b.WriteString("CASE TIMELINE\n")
	b.WriteString(reportRule + "\n")
	for _, u := range c.Updates {
		fmt.Fprintf(&b, "%s - %s\n%s\n\n", u.Date.Format(reportDateLayout), u.Title, u.Description)
	}

	b.WriteString(reportRule + "\n")
	fmt.Fprintf(&b, "Generated on: %s\n", generatedAt.Format(reportDateLayout+" 15:04"))
	b.WriteString("This document is confidential and for the case participant's records only.\n")
	return b.String()
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
