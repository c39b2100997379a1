// Package jobquery turns raw job search input into a normalized query:
// filters, sort order and page window. Repositories render a Query to SQL;
// Matches, Sort and Page evaluate the same semantics in memory.
package jobquery

import (
	"strings"

	"jobportal/internal/models"
)

const (
	// DefaultPageSize applies to public and employer listings
	DefaultPageSize = 10
	// AdminPageSize applies to admin listings
	AdminPageSize = 5
	// MaxPageSize bounds every page request
	MaxPageSize = 100
)

// SortKey selects the ordering column
type SortKey string

const (
	SortDate    SortKey = "date"
	SortTitle   SortKey = "title"
	SortCompany SortKey = "company"
	SortSalary  SortKey = "salary"
)

// Field is a job attribute a keyword can match against
type Field string

const (
	FieldTitle       Field = "title"
	FieldCompany     Field = "company"
	FieldLocation    Field = "location"
	FieldDescription Field = "description"
	FieldTags        Field = "tags"
)

var (
	// PublicKeywordFields is searched by the public job index
	PublicKeywordFields = []Field{FieldTitle, FieldCompany, FieldLocation, FieldDescription, FieldTags}
	// AdminKeywordFields is searched by the admin job list
	AdminKeywordFields = []Field{FieldTitle, FieldCompany, FieldLocation, FieldDescription}
	// EmployerKeywordFields is searched by the employer's own job list
	EmployerKeywordFields = []Field{FieldTitle, FieldLocation, FieldDescription}
)

// Criteria is the raw search input as submitted on the job index
type Criteria struct {
	Keyword       string   `schema:"Keyword"`
	Location      string   `schema:"Location"`
	JobType       string   `schema:"JobType"`
	MinSalary     *float64 `schema:"MinSalary"`
	MaxSalary     *float64 `schema:"MaxSalary"`
	Company       string   `schema:"Company"`
	Tags          string   `schema:"Tags"`
	Remote        bool     `schema:"Remote"`
	SortBy        string   `schema:"SortBy"`
	SortAscending *bool    `schema:"SortAscending"`
	Page          int      `schema:"Page"`
	PageSize      int      `schema:"PageSize"`
}

// Query is a normalized job search
type Query struct {
	Keyword       string
	KeywordFields []Field
	Location      string
	Company       string
	Tag           string
	JobType       models.JobType
	MinSalary     *float64
	MaxSalary     *float64
	SortBy        SortKey
	Ascending     bool
	Page          int
	PageSize      int
}

// Normalize resolves defaults: Remote overrides JobType, unknown sort keys
// fall back to newest first, and the page window is clamped.
func (c Criteria) Normalize(defaultPageSize int) Query {
	q := Query{
		Keyword:       strings.TrimSpace(c.Keyword),
		KeywordFields: PublicKeywordFields,
		Location:      strings.TrimSpace(c.Location),
		Company:       strings.TrimSpace(c.Company),
		Tag:           strings.TrimSpace(c.Tags),
		MinSalary:     c.MinSalary,
		MaxSalary:     c.MaxSalary,
	}

	if jt, ok := models.ParseJobType(c.JobType); ok {
		q.JobType = jt
	}
	if c.Remote {
		q.JobType = models.JobTypeRemote
	}

	q.SortBy, q.Ascending = resolveSort(c.SortBy, c.SortAscending)
	q.Page, q.PageSize = NormalizePage(c.Page, c.PageSize, defaultPageSize)

	return q
}

func resolveSort(sortBy string, ascending *bool) (SortKey, bool) {
	switch key := SortKey(strings.ToLower(strings.TrimSpace(sortBy))); key {
	case SortDate, SortTitle, SortCompany, SortSalary:
		return key, ascending == nil || *ascending
	default:
		return SortDate, false
	}
}

// NormalizePage applies 1-based paging defaults and the page size cap
func NormalizePage(page, pageSize, defaultPageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// Offset is the number of rows before the requested page
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// HasKeyword reports whether a keyword filter is active
func (q Query) HasKeyword() bool {
	return q.Keyword != "" && len(q.KeywordFields) > 0
}
