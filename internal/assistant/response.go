package assistant

// Response is the outcome of one assistant call.
type Response struct {
	content string
	hasText bool
}

// Text returns the textual content of the response. The second return is
// false when the assistant produced no textual content; callers map that to
// an empty answer rather than an error.
func (r Response) Text() (string, bool) {
	return r.content, r.hasText
}

// NewResponse builds a response with the given text. Used by tests and fakes.
func NewResponse(content string) Response {
	return Response{content: content, hasText: content != ""}
}
