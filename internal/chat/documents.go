package chat

import (
	"sort"
	"strings"
)

// DocumentSlot names an upload slot. Schools with a single combined grid use
// either slot.
type DocumentSlot string

const (
	SlotTier2 DocumentSlot = "tier2"
	SlotTier3 DocumentSlot = "tier3"
)

// AttachMode selects how reference material reaches the model. The two modes
// are mutually exclusive per configuration: a document travels either as
// pre-seeded extracted text or as an opaque part on the outbound send,
// never both in the same turn.
type AttachMode int

const (
	// AttachUpload sends opaque uploaded-file parts with the form digest.
	AttachUpload AttachMode = iota
	// AttachSeed seeds extracted document text into the session history.
	AttachSeed
)

// DocumentSet holds the attached reference documents for one session. Any
// change to the set bumps the epoch, which the session manager compares to
// decide whether the live handle still reflects current context.
type DocumentSet struct {
	mode  AttachMode
	refs  map[DocumentSlot]DocumentRef
	texts map[DocumentSlot]string
	epoch int
}

func NewDocumentSet(mode AttachMode) *DocumentSet {
	return &DocumentSet{
		mode:  mode,
		refs:  make(map[DocumentSlot]DocumentRef),
		texts: make(map[DocumentSlot]string),
	}
}

func (d *DocumentSet) Mode() AttachMode { return d.mode }

// AttachRef stores an uploaded-document reference in a slot (upload mode).
func (d *DocumentSet) AttachRef(slot DocumentSlot, ref DocumentRef) {
	d.refs[slot] = ref
	d.epoch++
}

// AttachText stores extracted document text in a slot (seed mode).
func (d *DocumentSet) AttachText(slot DocumentSlot, text string) {
	d.texts[slot] = text
	d.epoch++
}

// Attached reports whether any reference document is present.
func (d *DocumentSet) Attached() bool {
	for _, ref := range d.refs {
		if ref.ID != "" || ref.URI != "" {
			return true
		}
	}
	for _, text := range d.texts {
		if strings.TrimSpace(text) != "" {
			return true
		}
	}
	return false
}

// Epoch identifies the current document-set state. The session manager
// invalidates the handle when it observes a different epoch.
func (d *DocumentSet) Epoch() int { return d.epoch }

// Refs returns the attached references in slot order (tier2 before tier3),
// for upload-mode sends.
func (d *DocumentSet) Refs() []DocumentRef {
	slots := make([]string, 0, len(d.refs))
	for slot := range d.refs {
		slots = append(slots, string(slot))
	}
	sort.Strings(slots)
	out := make([]DocumentRef, 0, len(slots))
	for _, slot := range slots {
		ref := d.refs[DocumentSlot(slot)]
		if ref.ID == "" && ref.URI == "" {
			continue
		}
		out = append(out, ref)
	}
	return out
}

// ReferenceText joins the extracted slot texts for seeding, tier2 first.
func (d *DocumentSet) ReferenceText() string {
	if d.mode != AttachSeed {
		return ""
	}
	parts := make([]string, 0, 2)
	for _, slot := range []DocumentSlot{SlotTier2, SlotTier3} {
		if text := strings.TrimSpace(d.texts[slot]); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Clear detaches everything. The epoch still moves forward so a live session
// seeded with the old set cannot be reused.
func (d *DocumentSet) Clear() {
	d.refs = make(map[DocumentSlot]DocumentRef)
	d.texts = make(map[DocumentSlot]string)
	d.epoch++
}
