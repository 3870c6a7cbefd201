package etrade

import (
	"fmt"

	"github.com/clbanning/mxj/v2"
)

// Response is an XML body parsed into nested maps. Element text is kept as
// string, repeated elements become []interface{} and attributes are keyed
// with a leading "-".
type Response map[string]interface{}

// ParseResponse converts an XML document into a Response.
func ParseResponse(body []byte) (Response, error) {
	m, err := mxj.NewMapXml(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse XML response: %w", err)
	}
	return Response(m), nil
}

// ValuesForPath returns every value at a dot-separated path such as
// "AccountListResponse.Accounts.Account". A single element and a list of
// elements are both returned as a slice.
func (r Response) ValuesForPath(path string) ([]interface{}, error) {
	return mxj.Map(r).ValuesForPath(path)
}

// String returns the text at path, or "" when the path is absent.
func (r Response) String(path string) string {
	v, err := mxj.Map(r).ValueForPath(path)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// JSON renders the response for display.
func (r Response) JSON(indent bool) ([]byte, error) {
	if indent {
		return mxj.Map(r).JsonIndent("", "  ")
	}
	return mxj.Map(r).Json()
}
