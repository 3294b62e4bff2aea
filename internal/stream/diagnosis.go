package stream

import (
	"errors"
	"strings"
)

// Diagnosis turns a Ping failure into the operator-facing incident message
// posted to the engineering channel. The two known failure modes map to the
// station's runbook; anything else gets the generic text.
func Diagnosis(err error) string {
	var b strings.Builder
	b.WriteString("ALERT!! STREAM IS DOWN!!\n")
	b.WriteString("Likely cause: \n")

	switch {
	case errors.Is(err, ErrNoData):
		b.WriteString("No data read from Icecast server. \n")
		b.WriteString("The station computer is on and Icecast is running, ")
		b.WriteString("but the encoders aren't hooked up properly. This ")
		b.WriteString("most often happens when someone boots up multiple ")
		b.WriteString("encoder instances on the station computer. ")
		b.WriteString("I would start with looking at that.")
	case err != nil:
		b.WriteString("HTTP request timeout. \n")
		b.WriteString("This could mean a multitude of things. ")
		b.WriteString("Right off the bat, we know that Icecast is ")
		b.WriteString("acting off. This could be from the following ")
		b.WriteString("problems: \n")
		b.WriteString("1) Icecast has been closed on the computer\n")
		b.WriteString("2) multiple instances of Icecast are running\n")
		b.WriteString("3) the station computer has lost internet access\n")
		b.WriteString("4) the station computer is rebooting\n")
		b.WriteString("5) the station computer is off, either from ")
		b.WriteString("shutting down or from crashing.\n\n")
		b.WriteString("When diagnosing this issue, please check on the ")
		b.WriteString("encoders as well, because they could also be down.\n")
	default:
		b.WriteString("Unknown error!!! \n")
		b.WriteString("This should have never happened. ")
		b.WriteString("Just sit things out for a bit and everything will ")
		b.WriteString("be fine before long.\n")
	}
	return b.String()
}
