package domain

import (
	"fmt"
	"strings"
	"time"
)

type Contact struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"-"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phone_number"`
	Birthday       *Date     `json:"birthday,omitempty"`
	AdditionalData string    `json:"additional_data,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Date serializa fechas de calendario como "YYYY-MM-DD" en JSON.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.Format(dateLayout))), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// NextOccurrence devuelve la próxima ocurrencia del cumpleaños a partir de today.
func (d Date) NextOccurrence(today time.Time) time.Time {
	next := time.Date(today.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	todayDate := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(todayDate) {
		next = time.Date(today.Year()+1, d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	}
	return next
}
