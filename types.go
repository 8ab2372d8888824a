package getbook

import (
	"github.com/mrjoshuak/getbook/types"
)

// Chapter is the record extracted from one document.
type Chapter = types.Chapter

// Attachment is a media or data element lifted out of the content.
type Attachment = types.Attachment

// Image is the lead image of a chapter.
type Image = types.Image

// BuildInfo contains version and build information for the getbook library.
type BuildInfo = types.BuildInfo

// GetBuildInfo returns the current version information for the getbook library.
func GetBuildInfo() BuildInfo {
	return types.GetBuildInfo()
}

// Version is the current version of the getbook library.
var Version = types.Version

// Errors returned by extraction. Compare with errors.Is.
var (
	ErrNoDocument    = types.ErrNoDocument
	ErrDocumentLarge = types.ErrDocumentLarge
	ErrNoContent     = types.ErrNoContent
	ErrTimeout       = types.ErrTimeout
	ErrFetch         = types.ErrFetch
)
