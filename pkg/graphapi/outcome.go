package graphapi

// Outcome classifies the terminal result of a single API call. It is the
// contract shared by the merge executor and the bulk deleter: retry decisions
// are made on the outcome, never on raw status codes.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeNotFound     Outcome = "not_found"
	OutcomeClientError  Outcome = "client_error"
	OutcomeServerError  Outcome = "server_error"
	OutcomeNetworkError Outcome = "network_error"
)

// Retryable reports whether a retry could plausibly change the result.
// Not-found and client errors are terminal; only transient server and
// transport failures are worth another attempt.
func (o Outcome) Retryable() bool {
	return o == OutcomeServerError || o == OutcomeNetworkError
}

func classifyStatus(code int) Outcome {
	switch {
	case code >= 200 && code < 300:
		return OutcomeSuccess
	case code == 404:
		return OutcomeNotFound
	case code >= 400 && code < 500:
		return OutcomeClientError
	default:
		return OutcomeServerError
	}
}
