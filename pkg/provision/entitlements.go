package provision

import (
	"bytes"

	"github.com/arthur-debert/fnassist/pkg/errors"
	"github.com/beevik/etree"
)

// MemoryEntitlements are added to the profile so the game may use more
// memory than an iOS app normally gets.
var MemoryEntitlements = []string{
	"com.apple.developer.kernel.extended-virtual-addressing",
	"com.apple.developer.kernel.increased-memory-limit",
}

// PatchEntitlements adds MemoryEntitlements, set to true, to the
// Entitlements dictionary of the property list embedded in a provisioning
// profile. Bytes outside the property list are kept as they are. It
// reports whether anything was added.
func PatchEntitlements(profile []byte) ([]byte, bool, error) {
	start := bytes.Index(profile, []byte("<?xml"))
	end := bytes.LastIndex(profile, []byte("</plist>"))
	if start < 0 || end < start {
		return nil, false, errors.New(errors.ErrValidation, "no property list found in provisioning profile")
	}
	end += len("</plist>")

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(profile[start:end]); err != nil {
		return nil, false, errors.Wrap(err, errors.ErrValidation, "cannot parse provisioning property list")
	}

	entitlements := findEntitlements(doc)
	if entitlements == nil {
		return nil, false, errors.New(errors.ErrValidation, "provisioning profile has no Entitlements dictionary")
	}

	present := make(map[string]bool)
	for _, key := range entitlements.SelectElements("key") {
		present[key.Text()] = true
	}

	changed := false
	for _, name := range MemoryEntitlements {
		if present[name] {
			continue
		}
		entitlements.CreateElement("key").SetText(name)
		entitlements.CreateElement("true")
		changed = true
	}
	if !changed {
		return profile, false, nil
	}

	xml, err := doc.WriteToBytes()
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrInternal, "cannot serialize property list")
	}

	out := make([]byte, 0, len(profile)+len(xml)-(end-start))
	out = append(out, profile[:start]...)
	out = append(out, xml...)
	out = append(out, profile[end:]...)
	return out, true, nil
}

// findEntitlements returns the dict that follows <key>Entitlements</key>
// in the top-level dictionary
func findEntitlements(doc *etree.Document) *etree.Element {
	root := doc.SelectElement("plist")
	if root == nil {
		return nil
	}
	dict := root.SelectElement("dict")
	if dict == nil {
		return nil
	}
	children := dict.ChildElements()
	for i, child := range children {
		if child.Tag == "key" && child.Text() == "Entitlements" && i+1 < len(children) {
			if next := children[i+1]; next.Tag == "dict" {
				return next
			}
		}
	}
	return nil
}
