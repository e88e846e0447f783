package office

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"search-adapters/config"
	"search-adapters/rank"
)

// ooxmlMemberPrefix maps a container extension to the archive subtree that
// holds its text-bearing XML parts.
func ooxmlMemberPrefix(ext string) string {
	switch ext {
	case ".docx":
		return "word/"
	case ".pptx":
		return "ppt/"
	case ".xlsx":
		return "xl/"
	}
	return ""
}

// textBearingTags are the OOXML element names whose text is always kept
// regardless of length (runs, cell values, paragraphs, shared strings).
var textBearingTags = map[string]bool{
	"t":   true,
	"v":   true,
	"p":   true,
	"a:t": true,
	"is":  true,
	"si":  true,
}

// extractOOXMLText opens an OOXML container and concatenates the text of its
// XML members under the format's subtree. Oversized members are skipped and
// extraction stops once the character budget is spent. Any archive error
// yields empty text; the caller falls through to the next extractor.
func extractOOXMLText(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	prefix := ooxmlMemberPrefix(ext)
	if prefix == "" {
		return ""
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return ""
	}
	defer archive.Close()

	var parts []string
	charBudget := 0

	for _, member := range archive.File {
		lowerName := strings.ToLower(member.Name)
		if !strings.HasSuffix(lowerName, ".xml") {
			continue
		}
		if !strings.HasPrefix(lowerName, prefix) {
			continue
		}
		if member.UncompressedSize64 > config.MaxXMLMemberBytes {
			continue
		}

		reader, err := member.Open()
		if err != nil {
			continue
		}
		xmlBytes, err := io.ReadAll(io.LimitReader(reader, config.MaxXMLMemberBytes+1))
		reader.Close()
		if err != nil {
			continue
		}

		xmlText := extractTextFromXML(xmlBytes)
		if xmlText != "" {
			parts = append(parts, xmlText)
			charBudget += utf8.RuneCountInString(xmlText)
		}
		if charBudget > config.MaxExtractedTextChars {
			break
		}
	}

	return rank.TruncateChars(strings.Join(parts, " "), config.MaxExtractedTextChars)
}

// extractTextFromXML walks an XML document and collects element text: the
// character data directly following each start tag. Text is kept when the
// element's local name is a known text-bearing tag or the text itself is
// longer than 2 characters. A malformed document yields empty text.
func extractTextFromXML(xmlBytes []byte) string {
	decoder := xml.NewDecoder(bytes.NewReader(xmlBytes))

	var chunks []string
	var pending strings.Builder
	collectingTag := ""

	flush := func() {
		if collectingTag == "" {
			return
		}
		text := strings.TrimSpace(pending.String())
		pending.Reset()
		tag := collectingTag
		collectingTag = ""
		if text == "" {
			return
		}
		if textBearingTags[tag] || utf8.RuneCountInString(text) > 2 {
			chunks = append(chunks, text)
		}
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ""
		}

		switch t := token.(type) {
		case xml.StartElement:
			flush()
			collectingTag = strings.ToLower(t.Name.Local)
		case xml.CharData:
			if collectingTag != "" {
				pending.Write(t)
			}
		case xml.EndElement:
			flush()
		}
	}
	flush()

	return strings.Join(chunks, " ")
}
