package event

import "time"

const OtpIssuedDestination string = "otp_issued"
const OtpIssuedDestinationConsumerNotification string = "otp_issued_notification"

type OtpIssuedMessage struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Lastname  string    `json:"lastname"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
