package event

import "time"

const CredentialIssuedDestination string = "enrollment_credential_issued"
const CredentialIssuedDestinationConsumerNotifier string = "enrollment_credential_issued_notifier"

type CredentialIssuedMessage struct {
	EventID   int64     `json:"event_id"`
	Identity  string    `json:"identity"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
