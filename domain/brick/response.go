package brick

import "encoding/json"

// Flag is a boolean the provider encodes as 0/1, "0"/"1" or true/false
// depending on the endpoint.
type Flag bool

// UnmarshalJSON accepts numeric, string and native boolean encodings.
func (f *Flag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "1", `"1"`, "true":
		*f = true
	case "0", `"0"`, "false", "null":
		*f = false
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = n != 0
	}
	return nil
}

// Bool returns the flag as a plain bool.
func (f Flag) Bool() bool { return bool(f) }

// Response is the provider's reply to a creation call.
type Response struct {
	Object   string `json:"object"`
	ID       string `json:"id"`
	Success  Flag   `json:"success"`
	Active   Flag   `json:"active"`
	Captured Flag   `json:"captured"`
	Error    string `json:"error"`
	Code     int    `json:"code"`
}

// ParseResponse decodes the raw provider reply.
func ParseResponse(raw []byte) (Response, error) {
	var r Response
	if err := json.Unmarshal(raw, &r); err != nil {
		return Response{}, err
	}
	return r, nil
}

// IsSubscription reports whether the reply is a recognized successful
// subscription resource.
func (r Response) IsSubscription() bool {
	return r.Success.Bool() && r.Object == ObjectSubscription
}

// IsCharge reports whether the reply is a recognized successful charge.
func (r Response) IsCharge() bool {
	return r.Success.Bool() && r.Object == ObjectCharge
}

// ErrorMessage returns the provider error text, with a fallback for replies
// that carry no message.
func (r Response) ErrorMessage() string {
	if r.Error != "" {
		return r.Error
	}
	return "payment was declined by the provider"
}
