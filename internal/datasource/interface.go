package datasource

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RaynaArora/neo-hackathon/internal/models"
)

// ElectionSource is the election metadata service.
type ElectionSource interface {
	// UpcomingRaces returns races whose election day is on or after since.
	UpcomingRaces(ctx context.Context, since time.Time) ([]models.Race, error)

	// HistoricalOutcomes returns past winners of the race's position.
	HistoricalOutcomes(ctx context.Context, race models.Race) (*models.HistoricalRecord, error)

	// Name returns the name of the data source
	Name() string
}

// MarketSource is the prediction-market service.
type MarketSource interface {
	// FindMarkets returns candidate market records that may describe the race.
	FindMarkets(ctx context.Context, race models.Race) ([]models.MarketCandidateSet, error)

	Name() string
}

// FinanceSource is the campaign-finance service.
type FinanceSource interface {
	// TotalReceipts sums receipts over all candidates running in the race for a cycle.
	TotalReceipts(ctx context.Context, race models.Race, cycle int) (decimal.Decimal, error)

	// CandidateParty returns the party affiliation of a candidate.
	CandidateParty(ctx context.Context, candidateName string, race models.Race, cycle int) (string, error)

	Name() string
}

// DemographicSource is the demographic-aggregate service.
type DemographicSource interface {
	// PartySplit returns the aggregate party shares for a state.
	PartySplit(ctx context.Context, state string) (*models.RegionalPartySplit, error)

	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

// Unwrap returns the underlying error.
func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Is maps error codes onto the sentinel taxonomy so callers can use errors.Is.
func (e DataSourceError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Code == ErrCodeNotFound
	case ErrTransient:
		switch e.Code {
		case ErrCodeRateLimitExceeded, ErrCodeNetworkError, ErrCodeServerError, ErrCodeCircuitOpen:
			return true
		}
	case ErrMalformed:
		return e.Code == ErrCodeInvalidData
	case ErrRateLimitExceeded:
		return e.Code == ErrCodeRateLimitExceeded
	case ErrAuthenticationFailed:
		return e.Code == ErrCodeAuthenticationFailed
	}
	return false
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeCircuitOpen          = "circuit_open"
	ErrCodeUnknown              = "unknown"
)

// Error sentinels
var (
	// ErrNotFound means the service answered but holds no matching record.
	ErrNotFound = errors.New("data not found")
	// ErrTransient means the service could not be reached after retries.
	ErrTransient = errors.New("transient service error")
	// ErrMalformed means a record was missing required fields.
	ErrMalformed = errors.New("invalid data format")

	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound builds a not_found error for source.
func NotFound(source, message string) DataSourceError {
	return NewDataSourceError(source, ErrCodeNotFound, message, nil)
}

// IsNotFound reports whether err signals a genuine absence of data.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTransient reports whether err signals an unreachable or failing service.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsMalformed reports whether err signals malformed upstream data.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}
