package practicum

import "fmt"

// The three review statuses the API is documented to produce.
const (
	StatusApproved  = "approved"
	StatusReviewing = "reviewing"
	StatusRejected  = "rejected"
)

// verdicts maps each known status to its fixed human-readable sentence.
var verdicts = map[string]string{
	StatusApproved:  "The reviewer liked everything. Hooray!",
	StatusReviewing: "The submission was picked up for review.",
	StatusRejected:  "The reviewer left some remarks.",
}

// ExtractHomeworks validates the payload shape and returns the homework list
// unchanged (possibly empty).
func ExtractHomeworks(payload any) ([]any, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, &TypeError{Field: "response", Want: "object", Value: payload}
	}
	raw, ok := obj["homeworks"]
	if !ok {
		return nil, &MissingKeyError{Key: "homeworks"}
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, &TypeError{Field: "homeworks", Want: "list", Value: raw}
	}
	return list, nil
}

// CurrentDate extracts the server-reported watermark, when present.
func CurrentDate(payload any) (int64, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	v, ok := obj["current_date"]
	if !ok {
		return 0, false
	}
	// encoding/json decodes numbers into float64.
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int64(f), true
}

// DescribeStatus turns one homework record into the notification sentence.
func DescribeStatus(record any) (string, error) {
	obj, ok := record.(map[string]any)
	if !ok {
		return "", &TypeError{Field: "homework", Want: "object", Value: record}
	}
	name, ok := obj["homework_name"]
	if !ok {
		return "", &MissingKeyError{Key: "homework_name"}
	}
	rawStatus, ok := obj["status"]
	if !ok {
		return "", &MissingKeyError{Key: "status"}
	}

	status := fmt.Sprint(rawStatus)
	verdict, known := verdicts[status]
	if !known {
		return "", &UnknownStatusError{Status: status}
	}
	return fmt.Sprintf("Changed review status of %q: %s", fmt.Sprint(name), verdict), nil
}
