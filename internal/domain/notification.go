package domain

import "time"

// NotificationType classifies a notification for the delivery layer.
type NotificationType string

const (
	NotificationDonationThanks  NotificationType = "donation_thanks"
	NotificationNewDonation     NotificationType = "new_donation"
	NotificationCaseCompleted   NotificationType = "case_completed"
	NotificationPaymentReceived NotificationType = "payment_received"
	NotificationCaseApproved    NotificationType = "case_approved"
	NotificationCaseRejected    NotificationType = "case_rejected"
	NotificationCaseDeleted     NotificationType = "case_deleted"
	NotificationStoryApproved   NotificationType = "story_approved"
	NotificationStoryRejected   NotificationType = "story_rejected"
	NotificationSystemAlert     NotificationType = "system_alert"
)

// NotificationChannel names a delivery channel.
type NotificationChannel string

const (
	ChannelDashboard NotificationChannel = "dashboard"
	ChannelPush      NotificationChannel = "push"
	ChannelEmail     NotificationChannel = "email"
)

// DeliveryStatus records per-channel delivery flags. Delivery itself is
// performed by an external worker; this core only records requests.
type DeliveryStatus struct {
	Dashboard bool `json:"dashboard"`
	Push      bool `json:"push"`
	Email     bool `json:"email"`
}

// Notification is one recorded notification request addressed to a
// recipient key (a real account id or a synthesized email key).
type Notification struct {
	ID          string
	User        string
	Title       string
	Message     string
	Type        NotificationType
	Channels    []NotificationChannel
	ReferenceID string
	Link        string
	Metadata    map[string]any
	Delivery    DeliveryStatus
	IsRead      bool
	CreatedAt   time.Time
}
