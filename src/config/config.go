package config

import (
	"fmt"
	"os"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// DATE_PARSE_FORMAT is the wire format for check-in/check-out dates.
// Check-out is exclusive: a stay of [check_in, check_out) never collides
// with a stay starting on its check_out date.
const DATE_PARSE_FORMAT = "2006-01-02"

const TIME_PARSE_FORMAT = "2006-01-02 15:04:05 -07:00"

var (
	API_ENV             = os.Getenv("API_ENV")
	API_HOST            = os.Getenv("API_HOST")
	API_SECRET          = os.Getenv("API_SECRET")
	OAUTH_CLIENT_ID     = os.Getenv("OAUTH_CLIENT_ID")
	OAUTH_CLIENT_SECRET = os.Getenv("OAUTH_CLIENT_SECRET")
	SMTP_FROM           = os.Getenv("SMTP_FROM")
)

// ORDER_HOLD_DURATION_MINUTES is how long a pending order keeps its rooms
// before the expiry job releases them.
const ORDER_HOLD_DURATION_MINUTES = 30
