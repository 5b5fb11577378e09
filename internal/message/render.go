// Package message parses raw RFC 822 messages fetched over IMAP into
// decoded envelopes and readable plain-text bodies.
package message

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/epistle-sh/epistle/internal/core/domain"
)

// ParseEnvelope decodes the To, From, Subject and Date headers from a
// raw RFC 822 header block.
func ParseEnvelope(seqNum uint32, header []byte) (domain.Envelope, error) {
	msg, err := readMessage(header)
	if err != nil {
		return domain.Envelope{}, err
	}

	return domain.Envelope{
		SeqNum:  seqNum,
		From:    decodeHeader(msg.Header.Get("From")),
		To:      decodeHeader(msg.Header.Get("To")),
		Subject: decodeHeader(msg.Header.Get("Subject")),
		Date:    msg.Header.Get("Date"),
	}, nil
}

// Render parses a full raw message into a decoded envelope and a
// plain-text body. Plain parts are preferred; HTML-only messages are
// stripped to text.
func Render(seqNum uint32, raw []byte) (*domain.RenderedMessage, error) {
	msg, err := readMessage(raw)
	if err != nil {
		return nil, err
	}

	env := domain.Envelope{
		SeqNum:  seqNum,
		From:    decodeHeader(msg.Header.Get("From")),
		To:      decodeHeader(msg.Header.Get("To")),
		Subject: decodeHeader(msg.Header.Get("Subject")),
		Date:    msg.Header.Get("Date"),
	}

	rendered := &domain.RenderedMessage{Envelope: env}

	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unparseable content type: best effort, read as plain text.
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return nil, domain.ErrInvalidInput
		}
		rendered.Body = strings.TrimSpace(string(body))
		return rendered, nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		rendered.Multipart = true
		body, fromHTML, err := extractMultipart(msg.Body, params["boundary"])
		if err != nil {
			return nil, err
		}
		rendered.Body = strings.TrimSpace(body)
		rendered.FromHTML = fromHTML
		return rendered, nil
	}

	body, err := decodeBody(msg.Body, msg.Header.Get("Content-Transfer-Encoding"))
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	if mediaType == "text/html" {
		rendered.Body = strings.TrimSpace(stripHTMLTags(string(body)))
		rendered.FromHTML = true
		return rendered, nil
	}

	rendered.Body = strings.TrimSpace(string(body))
	return rendered, nil
}

// readMessage parses raw bytes with net/mail, tolerating header-only
// input such as an RFC822.HEADER fetch item.
func readMessage(raw []byte) (*mail.Message, error) {
	if len(raw) == 0 {
		return nil, domain.ErrInvalidInput
	}
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		// Header-only blocks may lack the blank separator line.
		msg, err = mail.ReadMessage(bytes.NewReader(append(raw, '\r', '\n')))
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
	}
	return msg, nil
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header // Return original if decoding fails
	}
	return decoded
}

// decodeBody applies the content transfer encoding to a part body.
func decodeBody(r io.Reader, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		r = base64.NewDecoder(base64.StdEncoding, newLineFilter(r))
	case "quoted-printable":
		r = quotedprintable.NewReader(r)
	}
	return io.ReadAll(r)
}

// extractMultipart walks a multipart body and returns the preferred
// text. Plain parts win; stripped HTML is the fallback.
func extractMultipart(r io.Reader, boundary string) (body string, fromHTML bool, err error) {
	if boundary == "" {
		return "", false, nil
	}

	mr := multipart.NewReader(r, boundary)
	var textParts []string
	var htmlParts []string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}

		disposition := part.Header.Get("Content-Disposition")
		if strings.HasPrefix(strings.ToLower(disposition), "attachment") {
			continue
		}

		content, readErr := decodeBody(part, part.Header.Get("Content-Transfer-Encoding"))
		if readErr != nil {
			continue
		}

		switch {
		case mediaType == "text/plain":
			textParts = append(textParts, string(content))
		case mediaType == "text/html":
			htmlParts = append(htmlParts, stripHTMLTags(string(content)))
		case strings.HasPrefix(mediaType, "multipart/"):
			nested, nestedHTML, nestedErr := extractMultipart(bytes.NewReader(content), params["boundary"])
			if nestedErr == nil && nested != "" {
				if nestedHTML {
					htmlParts = append(htmlParts, nested)
				} else {
					textParts = append(textParts, nested)
				}
			}
		}
	}

	if len(textParts) > 0 {
		return strings.Join(textParts, "\n"), false, nil
	}
	if len(htmlParts) > 0 {
		return strings.Join(htmlParts, "\n"), true, nil
	}
	return "", false, nil
}

// stripHTMLTags removes HTML tags for basic text extraction.
func stripHTMLTags(html string) string {
	var result strings.Builder
	inTag := false

	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	// Clean up whitespace
	text := result.String()
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}

// lineFilter drops CR and LF so base64 bodies with wrapped lines decode.
type lineFilter struct {
	r io.Reader
}

func newLineFilter(r io.Reader) io.Reader {
	return &lineFilter{r: r}
}

func (f *lineFilter) Read(p []byte) (int, error) {
	n, err := f.r.Read(p)
	kept := 0
	for i := 0; i < n; i++ {
		if p[i] == '\r' || p[i] == '\n' {
			continue
		}
		p[kept] = p[i]
		kept++
	}
	if kept == 0 && err == nil && n > 0 {
		// Whole chunk was line breaks; try again.
		return f.Read(p)
	}
	return kept, err
}
