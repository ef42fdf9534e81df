package invoice

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
)

// element is a node of the generated XML document.
type element struct {
	name     string
	attrs    []xml.Attr
	value    string
	children []element
}

func simpleElement(name, value string) element {
	return element{name: name, value: value}
}

// XML renders the invoice as an indented XML document with declaration.
func (inv *Invoice) XML() []byte {
	root := element{
		name:  "invoice",
		attrs: []xml.Attr{{Name: xml.Name{Local: "ro"}, Value: inv.RepairOrderID}},
		children: []element{
			simpleElement("shop", inv.Shop),
			simpleElement("date", inv.Date.Format(DateLayout)),
			simpleElement("status", inv.Status),
		},
	}

	for _, line := range inv.Lines {
		root.children = append(root.children, element{
			name:  "lineItem",
			attrs: []xml.Attr{{Name: xml.Name{Local: "n"}, Value: strconv.Itoa(line.N)}},
			children: []element{
				simpleElement("ID", line.ItemID),
				simpleElement("Part", line.Part),
				simpleElement("Price", line.Price.StringFixed(2)),
			},
		})
	}

	root.children = append(root.children, simpleElement("total", inv.Total.StringFixed(2)))

	var buffer bytes.Buffer
	buffer.WriteString(xml.Header)
	writeElement(&buffer, root, "  ", 0)
	return buffer.Bytes()
}

// WriteXML writes the XML document to path, replacing any existing file.
func (inv *Invoice) WriteXML(path string) error {
	if err := os.WriteFile(path, inv.XML(), 0644); err != nil {
		return fmt.Errorf("failed to write invoice XML: %w", err)
	}
	return nil
}

// writeElement writes an element and its children with indentation.
func writeElement(buffer *bytes.Buffer, e element, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(e.name)
	for _, attr := range e.attrs {
		buffer.WriteString(" ")
		buffer.WriteString(attr.Name.Local)
		buffer.WriteString(`="`)
		xml.EscapeText(buffer, []byte(attr.Value))
		buffer.WriteString(`"`)
	}

	if len(e.children) == 0 && e.value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if len(e.children) == 0 {
		xml.EscapeText(buffer, []byte(e.value))
	} else {
		buffer.WriteString("\n")
		for _, child := range e.children {
			writeElement(buffer, child, indent, level+1)
		}
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(e.name)
	buffer.WriteString(">\n")
}
