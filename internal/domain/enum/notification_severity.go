package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// NotificationSeverity represents the severity of an in-app notification
type NotificationSeverity string

const (
	NotificationSeverityInfo    NotificationSeverity = "info"
	NotificationSeverityWarning NotificationSeverity = "warning"
	NotificationSeverityError   NotificationSeverity = "error"
)

func (s NotificationSeverity) String() string {
	return string(s)
}

func (s NotificationSeverity) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *NotificationSeverity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = NotificationSeverity(str)
	return nil
}

func (s NotificationSeverity) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *NotificationSeverity) Scan(value interface{}) error {
	if value == nil {
		*s = NotificationSeverityInfo
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = NotificationSeverity(v)
	case []byte:
		*s = NotificationSeverity(string(v))
	}
	return nil
}
