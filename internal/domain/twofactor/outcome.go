package twofactor

// Status is the coarse outcome of a generate or validate attempt.
type Status string

const (
	StatusUnavailable Status = "unavailable"
	StatusInvalid     Status = "invalid"
	StatusDenied      Status = "denied"
	StatusSuccess     Status = "success"
)

// Reason refines a Status for logs and metrics. It is never shown to end users.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNotConfigured       Reason = "not_configured"
	ReasonClientBuild         Reason = "client_build_failed"
	ReasonProviderUnreachable Reason = "provider_unreachable"
	ReasonAuthorizationURL    Reason = "authorization_url_failed"
	ReasonMalformedCallback   Reason = "malformed_callback"
	ReasonStateUnprotect      Reason = "state_unprotect_failed"
	ReasonStateInvalid        Reason = "state_invalid"
	ReasonStateMismatch       Reason = "state_principal_mismatch"
	ReasonCodeReplayed        Reason = "code_replayed"
	ReasonNoResult            Reason = "no_result"
	ReasonVerdictDenied       Reason = "verdict_denied"
)

// Verdict is the provider's decision returned by the code exchange.
type Verdict string

// VerdictAllow is the only verdict treated as success.
const VerdictAllow Verdict = "allow"

// Allowed reports whether v is exactly the allow verdict.
func (v Verdict) Allowed() bool { return v == VerdictAllow }

// GenerateResult is the outcome of building an authorization request.
type GenerateResult struct {
	Status      Status
	Reason      Reason
	RedirectURL string
}

// OK reports whether a redirect URL was produced.
func (r GenerateResult) OK() bool {
	return r.Status == StatusSuccess && r.RedirectURL != ""
}

// ValidateResult is the outcome of validating a callback.
type ValidateResult struct {
	Status  Status
	Reason  Reason
	Verdict Verdict
}

// OK reports whether the callback was accepted.
func (r ValidateResult) OK() bool {
	return r.Status == StatusSuccess
}
