package cases

import "github.com/linesmerrill/casetrack-api/models"

// Summarise computes dashboard statistics over cs
func Summarise(cs []models.Case) models.CaseStats {
	stats := models.CaseStats{
		ByStatus:  make(map[models.Status]int),
		ByType:    make(map[string]int),
		ByStation: make(map[string]int),
	}
	for _, c := range cs {
		stats.Total++
		switch c.StatusLabel {
		case models.LabelCompleted:
			stats.Resolved++
		case models.LabelOverdue:
			stats.Overdue++
		default:
			stats.InProgress++
		}
		if c.Priority == models.PriorityHigh {
			stats.Escalated++
		}
		stats.ByStatus[c.Status]++
		stats.ByType[c.Type]++
		if c.StationName != "" {
			stats.ByStation[c.StationName]++
		}
	}
	if stats.Total > 0 {
		stats.ResolutionRate = stats.Resolved * 100 / stats.Total
	}
	return stats
}
