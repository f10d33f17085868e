package models

import "time"

// Direction indicates whether the account owner received or sent an email
type Direction string

const (
	DirectionReceived Direction = "received"
	DirectionSent     Direction = "sent"
)

// Email represents an inbound email event delivered by the email source.
// The provider-assigned ID is the identity key for deduplication.
type Email struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Date      time.Time `json:"date"`
	Direction Direction `json:"direction"`
}
