/*
Package getbook extracts the readable main content of a web page together
with its metadata (title, author, publisher, publish date, lead image,
summary and language) and returns it as a Chapter.

Media and data elements in the content (images, video, audio, iframes,
tables, code and gist embeds) are lifted out into Chapter.Attachments and
replaced by placeholder spans, so downstream tools can assemble the chapter
into a book or feed with their own markup.

Basic Usage:

	import "github.com/mrjoshuak/getbook"

	ext := getbook.New()

	// Parse markup you already have
	ch, err := ext.Extract(ctx, "https://example.com/post", htmlString)
	if err != nil {
	    // Handle error
	}

	fmt.Printf("Title: %s\n", ch.Title)
	fmt.Printf("Author: %s\n", ch.Author)
	fmt.Printf("Content: %s\n", ch.Content)

	// Or fetch it
	ch, err = ext.Fetch(ctx, "https://example.com/post")

Attachments:

	content, err := getbook.ReplaceAttachments(ch.Content, func(a getbook.Attachment) (string, error) {
	    if a.Tag != "img" {
	        return "", nil
	    }
	    return fmt.Sprintf(`<img src="%s">`, a.Src()), nil
	})

Site adapters:

Pages on hosts with a registered adapter (GitHub issues, pull requests and
blob pages) are parsed with site-specific selectors. Everything an adapter
does not provide falls back to the generic scoring heuristics. Use
WithRegistry to add adapters or replace the default engine.

Errors:

All errors carry a "[type:func]" prefix and wrap one of the sentinel errors
of this package, so they can be tested with errors.Is:

	if errors.Is(err, getbook.ErrNoContent) {
	    // nothing readable on the page
	}
*/
package getbook
