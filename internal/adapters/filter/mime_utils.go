package filter

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"golang.org/x/net/html"
)

const noTextPlaceholder = "[No text content found in multipart message]"

var headerDecoder = new(mime.WordDecoder)

// Message is the part of an RFC 5322 message the analyzer looks at.
type Message struct {
	From    string
	Subject string
	Body    string
	Header  mail.Header

	// headerEnd and bodyStart index into the raw bytes.
	headerEnd int
	bodyStart int
	raw       []byte
}

// ParseMessage reads a raw message and extracts its decoded text content.
func ParseMessage(raw []byte) (*Message, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse email message: %w", err)
	}

	body, err := extractText(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	m := &Message{
		Subject: decodeHeader(msg.Header.Get("Subject")),
		Body:    body,
		Header:  msg.Header,
		raw:     raw,
	}
	if addr, err := mail.ParseAddress(msg.Header.Get("From")); err == nil {
		m.From = addr.Address
	} else {
		m.From = strings.TrimSpace(msg.Header.Get("From"))
	}

	m.headerEnd, m.bodyStart = splitHeader(raw)
	return m, nil
}

// splitHeader finds the blank line separating header and body.
func splitHeader(raw []byte) (headerEnd, bodyStart int) {
	if i := bytes.Index(raw, []byte("\r\n\r\n")); i >= 0 {
		return i + 2, i + 4
	}
	if i := bytes.Index(raw, []byte("\n\n")); i >= 0 {
		return i + 1, i + 2
	}
	return len(raw), len(raw)
}

// extractText returns the text/plain content of a body. Multipart bodies are
// walked recursively. text/html is used, with markup stripped, only when no
// plain part exists; other parts are skipped.
func extractText(contentType, transferEncoding string, body io.Reader) (string, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") || params["boundary"] == "" {
		decoded := decodeTransfer(transferEncoding, body)
		if err == nil && mediaType == "text/html" {
			return htmlText(decoded)
		}
		data, err := io.ReadAll(decoded)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	var text, htmlParts strings.Builder
	mr := multipart.NewReader(body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Keep what was read before the malformed part.
			if text.Len() > 0 {
				return text.String(), nil
			}
			return "", err
		}

		partType := strings.ToLower(part.Header.Get("Content-Type"))
		switch {
		case strings.HasPrefix(partType, "multipart/"):
			nested, err := extractText(part.Header.Get("Content-Type"), "", part)
			if err == nil && nested != noTextPlaceholder {
				text.WriteString(nested)
			}
		case partType == "" || strings.HasPrefix(partType, "text/plain"):
			data, err := io.ReadAll(decodeTransfer(part.Header.Get("Content-Transfer-Encoding"), part))
			if err != nil {
				continue
			}
			text.Write(data)
			text.WriteString("\n")
		case strings.HasPrefix(partType, "text/html") && text.Len() == 0:
			stripped, err := htmlText(decodeTransfer(part.Header.Get("Content-Transfer-Encoding"), part))
			if err != nil {
				continue
			}
			htmlParts.WriteString(stripped)
			htmlParts.WriteString("\n")
		}
	}

	switch {
	case text.Len() > 0:
		return text.String(), nil
	case htmlParts.Len() > 0:
		return htmlParts.String(), nil
	default:
		return noTextPlaceholder, nil
	}
}

// htmlText reduces an HTML document to its visible text, one line per text
// node. Link targets are kept as text.
func htmlText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML part: %w", err)
	}

	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "head":
				return
			case "a":
				for _, attr := range n.Attr {
					if attr.Key == "href" && strings.TrimSpace(attr.Val) != "" {
						lines = append(lines, strings.TrimSpace(attr.Val))
					}
				}
			}
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				lines = append(lines, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(lines, "\n"), nil
}

// decodeTransfer undoes a Content-Transfer-Encoding. multipart.Reader already
// decodes quoted-printable parts and drops the header.
func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, &newlineStripper{r: r})
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

// newlineStripper drops CR and LF so wrapped base64 decodes.
type newlineStripper struct {
	r io.Reader
}

func (n *newlineStripper) Read(p []byte) (int, error) {
	for {
		count, err := n.r.Read(p)
		kept := 0
		for _, b := range p[:count] {
			if b != '\r' && b != '\n' {
				p[kept] = b
				kept++
			}
		}
		if kept > 0 || err != nil {
			return kept, err
		}
	}
}

// decodeHeader decodes RFC 2047 encoded words, returning the input on failure.
func decodeHeader(value string) string {
	decoded, err := headerDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// rewriteHeader copies the raw header section, replacing Subject when
// subject is non-empty.
func rewriteHeader(header []byte, subject string) []byte {
	if subject == "" {
		return header
	}

	var out bytes.Buffer
	skipping := false
	for _, line := range bytes.SplitAfter(header, []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		if skipping && (line[0] == ' ' || line[0] == '\t') {
			continue
		}
		skipping = false
		if len(line) >= 8 && strings.EqualFold(string(line[:8]), "subject:") {
			skipping = true
			continue
		}
		out.Write(line)
	}
	fmt.Fprintf(&out, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	return out.Bytes()
}
