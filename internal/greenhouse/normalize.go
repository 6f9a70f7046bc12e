package greenhouse

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"jobwatch/watcher-service/internal/model"
)

// Job type values assigned during normalization.
const (
	TypeFullTime = "Full-time"
	TypePartTime = "Part-time"
	TypeContract = "Contract"
	TypeIntern   = "Intern"
)

// normalize converts one wire record into a canonical posting. The source
// row id is filled in later by the poller; SourceSlug carries identity until
// then.
func normalize(slug string, job boardJob, raw json.RawMessage) model.Posting {
	// The location stays close to source truth; alias and prefix handling
	// happens at match time in the location resolver.
	title := job.Title
	location := strings.TrimSpace(job.Location.Name)
	department := parseDepartment(job.Departments)
	jobType := parseJobType(job.Metadata, title)

	return model.Posting{
		SourceSlug:  slug,
		ExternalID:  job.ID.String(),
		Title:       title,
		Department:  department,
		Location:    location,
		JobType:     jobType,
		ApplyURL:    job.AbsoluteURL,
		Fingerprint: Fingerprint(title, location, department, jobType),
		RawData:     raw,
		IsActive:    true,
	}
}

// Fingerprint hashes the user-visible mutable fields. Equality is the sole
// criterion for "unchanged" during diffing; this is not a security hash.
func Fingerprint(title, location, department, jobType string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%s", title, location, department, jobType)))
	return hex.EncodeToString(sum[:])
}

func parseDepartment(depts []boardDept) string {
	if len(depts) == 0 {
		return ""
	}
	return depts[0].Name
}

// parseJobType resolves the job type from explicit metadata when present,
// else infers it from title keywords.
func parseJobType(metadata []boardMetadata, title string) string {
	for _, item := range metadata {
		name := strings.ToLower(item.Name)
		if name != "employment_type" && name != "job_type" {
			continue
		}
		if value, ok := item.Value.(string); ok && value != "" {
			return value
		}
	}

	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "intern"):
		return TypeIntern
	case strings.Contains(lower, "contract"):
		return TypeContract
	case strings.Contains(lower, "part-time"), strings.Contains(lower, "part time"):
		return TypePartTime
	default:
		return TypeFullTime
	}
}
