package model

// FailureMessage is the single user-facing message for every failed
// verification, whatever the underlying cause.
const FailureMessage = "Invalid wallet or error fetching balance"

// Status is the outcome tag of a Result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result is the per-wallet verification outcome. It is either a success
// carrying balance and valuation, or a failure carrying only a message.
// Build it with Success or Failure; results are replaced wholesale, never
// patched, except for the transient Retrying marker.
type Result struct {
	Wallet     string         `json:"wallet" yaml:"wallet"`
	Status     Status         `json:"status" yaml:"status"`
	Balance    float64        `json:"balance,omitempty" yaml:"balance,omitempty"`
	Classifier string         `json:"classifier,omitempty" yaml:"classifier,omitempty"`
	USDValue   float64        `json:"usdValue,omitempty" yaml:"usdValue,omitempty"`
	Metadata   *TokenMetadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Message    string         `json:"message,omitempty" yaml:"message,omitempty"`
	Retrying   bool           `json:"retrying,omitempty" yaml:"retrying,omitempty"`
}

// Success builds a successful result. usdValue must already be balance×price.
func Success(wallet string, balance float64, classifier string, usdValue float64, meta *TokenMetadata) Result {
	return Result{
		Wallet:     wallet,
		Status:     StatusSuccess,
		Balance:    balance,
		Classifier: classifier,
		USDValue:   usdValue,
		Metadata:   meta,
	}
}

// Failure builds a failed result with the generic failure message.
func Failure(wallet string) Result {
	return Result{
		Wallet:  wallet,
		Status:  StatusFailure,
		Message: FailureMessage,
	}
}

// HasError reports whether the result is a failure.
func (r Result) HasError() bool {
	return r.Status == StatusFailure
}

// Unit selects which metric a threshold filter compares against.
type Unit int

const (
	UnitUSD Unit = iota
	UnitToken
)

func (u Unit) String() string {
	if u == UnitToken {
		return "tokens"
	}
	return "USD"
}

// Metric returns the value compared by filters: token amount or USD value.
// Failures have no metric and report 0.
func (r Result) Metric(unit Unit) float64 {
	if r.HasError() {
		return 0
	}
	if unit == UnitToken {
		return r.Balance
	}
	return r.USDValue
}
