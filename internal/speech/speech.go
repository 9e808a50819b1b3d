// Package speech adapts the microphone, the transcribers and the speech
// synthesizers into the two calls the assistant needs: Capture and Speak.
package speech

// Reporter receives progress and outcome messages for the page.
type Reporter interface {
	Report(kind, text string)
}

type nopReporter struct{}

func (nopReporter) Report(string, string) {}
