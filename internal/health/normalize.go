package health

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tartampluch/go-garden/internal/config"
)

// idNamespace scopes generated contact UIDs to this application.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(config.AppID))

// StableID derives a deterministic UUID (v5) from a contact's name and birthday,
// so records without an identifier keep the same ID across refreshes.
func StableID(name, birthday string) string {
	input := fmt.Sprintf(config.FormatHashInput, name, birthday, config.UIDSalt)
	return uuid.NewSHA1(idNamespace, []byte(input)).String()
}

// NormalizeRecord turns a loosely typed row (JSON or YAML export of the
// contact store) into a Contact. Each field is looked up through its
// fallback chain in config.Fields*; the first present, non-empty value wins.
// Values that cannot be interpreted are treated as absent, so the result is
// always usable by the evaluator.
func NormalizeRecord(record map[string]interface{}) Contact {
	log := slog.With(config.LogKeyComponent, config.CompEngine)

	var c Contact

	if v, _, ok := lookup(record, config.FieldsName); ok {
		c.Name = strings.TrimSpace(fmt.Sprint(v))
	}
	if c.Name == "" {
		c.Name = config.FallbackName
	}

	if v, key, ok := lookup(record, config.FieldsLastContact); ok {
		if t, ok := toTime(v); ok {
			c.LastContactDate = &t
		} else {
			log.Debug(config.MsgSkippedDate, config.LogKeyKey, key, config.LogKeyValue, v)
		}
	}

	if v, key, ok := lookup(record, config.FieldsFrequencyDays); ok {
		if n, ok := toInt(v); ok && n > 0 {
			c.TargetFrequencyDays = n
		} else {
			log.Debug(config.MsgSkippedRecord, config.LogKeyKey, key, config.LogKeyValue, v)
		}
	}

	c.Importance = ImportanceMedium
	if v, _, ok := lookup(record, config.FieldsImportance); ok {
		c.Importance = ParseImportance(fmt.Sprint(v))
	}

	if v, key, ok := lookup(record, config.FieldsBirthday); ok {
		if md, ok := toMonthDay(v); ok {
			c.Birthday = &md
		} else {
			log.Debug(config.MsgSkippedDate, config.LogKeyKey, key, config.LogKeyValue, v)
		}
	}

	if v, _, ok := lookup(record, config.FieldsID); ok {
		c.ID = strings.TrimSpace(fmt.Sprint(v))
	}
	if c.ID == "" {
		bday := ""
		if c.Birthday != nil {
			bday = c.Birthday.String()
		}
		c.ID = StableID(c.Name, bday)
	}

	return c
}

// lookup returns the first key of the chain holding a non-nil, non-blank value.
func lookup(record map[string]interface{}, keys []string) (interface{}, string, bool) {
	for _, k := range keys {
		v, ok := record[k]
		if !ok || v == nil {
			continue
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			continue
		}
		return v, k, true
	}
	return nil, "", false
}

// parseTimestamp accepts full date and date-time strings. Date-only values are UTC midnight.
func parseTimestamp(value string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
		config.DateFormatSpaced,
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toTime(v interface{}) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case *time.Time:
		if val == nil || val.IsZero() {
			return time.Time{}, false
		}
		return *val, true
	case string:
		return parseTimestamp(strings.TrimSpace(val))
	default:
		return time.Time{}, false
	}
}

// toInt accepts integral values within ±config.MaxFrequencyDays. Anything
// larger is treated as absent.
func toInt(v interface{}) (int, bool) {
	var n int64
	switch val := v.(type) {
	case int:
		n = int64(val)
	case int64:
		n = val
	case int32:
		n = int64(val)
	case uint64:
		if val > config.MaxFrequencyDays {
			return 0, false
		}
		n = int64(val)
	case float64:
		if val != math.Trunc(val) || math.Abs(val) > config.MaxFrequencyDays {
			return 0, false
		}
		n = int64(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, false
		}
		n = i
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}

	if n > config.MaxFrequencyDays || n < -config.MaxFrequencyDays {
		return 0, false
	}
	return int(n), true
}

func toMonthDay(v interface{}) (MonthDay, bool) {
	switch val := v.(type) {
	case time.Time:
		if val.IsZero() {
			return MonthDay{}, false
		}
		return MonthDay{Month: val.Month(), Day: val.Day()}, true
	case string:
		md, err := ParseMonthDay(val)
		return md, err == nil
	case map[string]interface{}:
		month, okM := toInt(val["month"])
		day, okD := toInt(val["day"])
		if !okM || !okD {
			return MonthDay{}, false
		}
		md, err := NewMonthDay(time.Month(month), day)
		return md, err == nil
	default:
		return MonthDay{}, false
	}
}
