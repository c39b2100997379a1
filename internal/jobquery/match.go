package jobquery

import (
	"sort"
	"strings"

	"jobportal/internal/models"
)

// Matches reports whether a job satisfies every active filter of q
func (q Query) Matches(job *models.Job) bool {
	if q.HasKeyword() {
		found := false
		for _, f := range q.KeywordFields {
			if containsFold(fieldValue(job, f), q.Keyword) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if q.Location != "" && !containsFold(job.Location, q.Location) {
		return false
	}
	if q.Company != "" && !containsFold(job.Company, q.Company) {
		return false
	}
	if q.Tag != "" && !containsFold(job.Tags, q.Tag) {
		return false
	}
	if q.JobType != "" && job.JobType != q.JobType {
		return false
	}
	if q.MinSalary != nil && job.Salary < *q.MinSalary {
		return false
	}
	if q.MaxSalary != nil && job.Salary > *q.MaxSalary {
		return false
	}

	return true
}

// Filter returns the jobs matching q, in their original order
func (q Query) Filter(jobs []*models.Job) []*models.Job {
	out := make([]*models.Job, 0, len(jobs))
	for _, j := range jobs {
		if q.Matches(j) {
			out = append(out, j)
		}
	}
	return out
}

// Sort orders jobs in place by the query's sort key and direction
func (q Query) Sort(jobs []*models.Job) {
	less := func(a, b *models.Job) bool {
		switch q.SortBy {
		case SortTitle:
			return a.Title < b.Title
		case SortCompany:
			return a.Company < b.Company
		case SortSalary:
			return a.Salary < b.Salary
		default:
			return a.PostedDate.Before(b.PostedDate)
		}
	}

	sort.SliceStable(jobs, func(i, j int) bool {
		if q.Ascending {
			return less(jobs[i], jobs[j])
		}
		return less(jobs[j], jobs[i])
	})
}

// Page returns the page window of items, empty when the page is out of range
func Page[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if page < 1 || pageSize < 1 || start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func fieldValue(job *models.Job, f Field) string {
	switch f {
	case FieldTitle:
		return job.Title
	case FieldCompany:
		return job.Company
	case FieldLocation:
		return job.Location
	case FieldDescription:
		return job.Description
	case FieldTags:
		return job.Tags
	}
	return ""
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
