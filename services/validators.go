package services

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationResult is returned by field validators. Validators never return
// Go errors; an invalid input is a value, not a fault.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func valid() ValidationResult {
	return ValidationResult{Valid: true}
}

func invalid(reason string) ValidationResult {
	return ValidationResult{Valid: false, Reason: reason}
}

const (
	CoverLetterMinLength = 100
	CoverLetterMaxLength = 1000

	// maxCharRun is the spam heuristic: any single character repeated this
	// many times consecutively fails validation.
	maxCharRun = 10
)

// placeholderPhrases are template leftovers that mark an unedited cover letter.
var placeholderPhrases = []string{
	"lorem ipsum",
	"write your cover letter here",
	"insert cover letter",
	"your text here",
}

// NormalizeCoverLetter collapses runs of whitespace into single spaces and
// trims the result. Length limits apply to this normalized form.
func NormalizeCoverLetter(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ValidateCoverLetter checks a raw cover letter against length bounds,
// placeholder phrases, and the repeated-character spam heuristic.
func ValidateCoverLetter(text string) ValidationResult {
	normalized := NormalizeCoverLetter(text)
	length := len([]rune(normalized))
	if length < CoverLetterMinLength {
		return invalid(fmt.Sprintf("cover letter must be at least %d characters", CoverLetterMinLength))
	}
	if length > CoverLetterMaxLength {
		return invalid(fmt.Sprintf("cover letter must be at most %d characters", CoverLetterMaxLength))
	}
	lower := strings.ToLower(normalized)
	for _, phrase := range placeholderPhrases {
		if strings.Contains(lower, phrase) {
			return invalid("cover letter contains placeholder text")
		}
	}
	if hasLongCharRun(normalized, maxCharRun) {
		return invalid("cover letter contains repeated characters")
	}
	return valid()
}

// hasLongCharRun reports whether any single character repeats more than
// allowed times consecutively.
func hasLongCharRun(text string, allowed int) bool {
	var prev rune
	run := 0
	for _, r := range text {
		if r == prev {
			run++
			if run > allowed {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

const (
	// MaxDocumentBytes is the upload size ceiling (5 MiB).
	MaxDocumentBytes = 5 << 20
)

var acceptedExtensions = map[string]bool{
	".pdf":  true,
	".doc":  true,
	".docx": true,
}

var acceptedMediaTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// FileMetadata describes an upload candidate before any bytes move.
type FileMetadata struct {
	Name      string
	Size      int64
	MediaType string
}

// ValidateFile checks upload metadata against the size ceiling, the accepted
// document types, and storage-path safety of the filename.
func ValidateFile(file FileMetadata) ValidationResult {
	if file.Size > MaxDocumentBytes {
		return invalid(fmt.Sprintf("%s exceeds the %d MB size limit", file.Name, MaxDocumentBytes>>20))
	}
	ext := strings.ToLower(filepath.Ext(file.Name))
	if !acceptedExtensions[ext] && !acceptedMediaTypes[strings.ToLower(file.MediaType)] {
		return invalid(fmt.Sprintf("%s is not a PDF or Word document", file.Name))
	}
	if strings.ContainsAny(file.Name, "/\\?#%*:|\"<>\x00") {
		return invalid(fmt.Sprintf("%s has characters not allowed in file names", file.Name))
	}
	return valid()
}
