package rendering

import (
	"fmt"
	"strings"
	"time"
)

// WatermarkHeading marks the start of the generation watermark block.
const WatermarkHeading = "###### AI Generated README"

const watermarkDateLayout = "2006-01-02"

// Watermark returns the block appended to a finalized README.
func Watermark(date time.Time, model string) string {
	return fmt.Sprintf("\n\n%s\nGenerated on %s | Model: %s", WatermarkHeading, date.Format(watermarkDateLayout), model)
}

// ApplyWatermark appends the watermark for date and model to content.
func ApplyWatermark(content string, date time.Time, model string) string {
	return content + Watermark(date, model)
}

// StripWatermark removes a trailing watermark block and reports whether one was found.
// ApplyWatermark followed by StripWatermark returns the original content.
func StripWatermark(doc string) (string, bool) {
	marker := "\n\n" + WatermarkHeading + "\n"
	idx := strings.LastIndex(doc, marker)
	if idx < 0 {
		return doc, false
	}

	tail := doc[idx+len(marker):]
	if strings.Contains(tail, "\n") || !strings.HasPrefix(tail, "Generated on ") || !strings.Contains(tail, " | Model: ") {
		return doc, false
	}
	return doc[:idx], true
}
