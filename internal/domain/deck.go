package domain

import "fmt"

// MediaKind type
type MediaKind string

const (
	// MediaKindPhoto const
	MediaKindPhoto MediaKind = "PHOTO"
	// MediaKindVideo const
	MediaKindVideo MediaKind = "VIDEO"
)

// ItemType type - discriminator for the DeckItem sum type
type ItemType string

const (
	// ItemTypeContent const - a reviewable media item
	ItemTypeContent ItemType = "CONTENT"
	// ItemTypeSlot const - a placeholder eligible to host sponsored material
	ItemTypeSlot ItemType = "SLOT"
)

// ContentItem struct - Core domain entity, one reviewable media asset.
// ID is the stable, globally unique identifier assigned by the asset source.
type ContentItem struct {
	ID        string
	Kind      MediaKind
	SourceRef string
}

// SponsoredContent struct - Sponsored material delivered by the ad provider
type SponsoredContent struct {
	CampaignID string
	Headline   string
	MediaURL   string
	ClickURL   string
}

// DeckItem struct - Tagged union of a content entry and an ad slot.
// Exactly one case is populated: Content when Type == ItemTypeContent,
// SlotID (plus Filled once a fill lands) when Type == ItemTypeSlot.
type DeckItem struct {
	Type    ItemType
	Content *ContentItem
	SlotID  string
	Filled  *SponsoredContent
}

// ItemID func - Identity of the entry regardless of case
func (d DeckItem) ItemID() string {
	if d.Type == ItemTypeContent && d.Content != nil {
		return d.Content.ID
	}
	return d.SlotID
}

// IsContent func
func (d DeckItem) IsContent() bool {
	return d.Type == ItemTypeContent
}

// IsSlot func
func (d DeckItem) IsSlot() bool {
	return d.Type == ItemTypeSlot
}

// Deck type - Ordered, immutable-once-built sequence of review entries for one session
type Deck []DeckItem

// ContentCount func - Number of content entries in the deck
func (d Deck) ContentCount() int {
	count := 0
	for _, item := range d {
		if item.IsContent() {
			count++
		}
	}
	return count
}

// SlotCount func - Number of ad slot entries in the deck
func (d Deck) SlotCount() int {
	count := 0
	for _, item := range d {
		if item.IsSlot() {
			count++
		}
	}
	return count
}

// ContentItems func - All content entries in deck order, slots excluded
func (d Deck) ContentItems() []ContentItem {
	items := make([]ContentItem, 0, len(d))
	for _, item := range d {
		if item.IsContent() {
			items = append(items, *item.Content)
		}
	}
	return items
}

// BuildDeck func - Pure deck construction.
// Walks items in order appending each as a content entry; after every
// adFrequency-th content item a slot entry is appended, but only when the
// user is not entitled. Deterministic: slot IDs derive from their ordinal so
// identical inputs always produce an identical deck, which lets a deck be
// re-derived after a restart from the persisted item list alone.
func BuildDeck(items []ContentItem, entitled bool, adFrequency int) (Deck, error) {
	if adFrequency < 1 {
		return nil, fmt.Errorf("%w: %d", ErrAdFrequency, adFrequency)
	}

	deck := make(Deck, 0, len(items)+len(items)/adFrequency)
	slotOrdinal := 0
	for i, item := range items {
		content := item
		deck = append(deck, DeckItem{
			Type:    ItemTypeContent,
			Content: &content,
		})

		if !entitled && (i+1)%adFrequency == 0 {
			slotOrdinal++
			deck = append(deck, DeckItem{
				Type:   ItemTypeSlot,
				SlotID: fmt.Sprintf("slot-%d", slotOrdinal),
			})
		}
	}
	return deck, nil
}
