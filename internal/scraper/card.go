package scraper

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/oldmanfooty/carnival-sync/internal/event"
	"github.com/oldmanfooty/carnival-sync/internal/logger"
)

// expandWait bounds how long a card gets to reveal its details section.
const expandWait = 5 * time.Second

// minDescriptionLength filters boilerplate out of the description pick.
const minDescriptionLength = 20

// cardFields is the raw field set read from one expanded card.
type cardFields struct {
	IconURL     string
	Title       string
	Subtitle    string
	MapURL      string
	Address     string
	Description string
	ContactName string
	Phone       string
	Email       string
	Facebook    string
	Website     string
	EventType   string
	FullText    string
}

// extractCard processes a single card: expand, read, resolve the
// registration URL, derive title/date/state, classify.
//
// Returns (nil, nil) when the card was read fine but dropped: unparseable
// title or date, or rejected by the classifier. The whole sequence is
// idempotent with respect to page state: a card left expanded by an earlier
// failed pass produces the same output.
func (s *Scraper) extractCard(ctx context.Context, idx int) (*event.Event, error) {
	s.expandCard(ctx, idx)
	defer s.collapseCard(ctx, idx)

	html, err := s.cardHTML(ctx, idx)
	if err != nil {
		return nil, fmt.Errorf("reading card %d markup: %w", idx, err)
	}

	fields, err := readCardFields(html)
	if err != nil {
		return nil, fmt.Errorf("parsing card %d: %w", idx, err)
	}

	evt := &event.Event{
		RawTitle:       fields.Title,
		Subtitle:       fields.Subtitle,
		Address:        fields.Address,
		MapURL:         fields.MapURL,
		Description:    fields.Description,
		OrganiserName:  fields.ContactName,
		OrganiserEmail: fields.Email,
		OrganiserPhone: fields.Phone,
		Website:        fields.Website,
		Facebook:       fields.Facebook,
		EventType:      fields.EventType,
		IconURL:        fields.IconURL,
		Source:         event.Source,
		ScrapedAt:      time.Now().UTC(),
		RawContent:     fields.FullText,
	}

	// Best effort: an event without a registration URL is still an event.
	regURL, err := s.resolveRegistrationURL(ctx, idx)
	if err != nil {
		logger.Warn("Registration URL not resolved", logger.Fields{
			"card":  idx,
			"title": fields.Title,
			"error": err.Error(),
		})
	}
	evt.RegistrationURL = regURL

	parsed := event.ParseTitle(fields.Title)
	if parsed.Title == "" || parsed.Date.IsZero() {
		logger.Debug("Dropping card without usable title and date", logger.Fields{
			"card":  idx,
			"title": fields.Title,
		})
		return nil, nil
	}
	evt.Title = parsed.Title
	evt.Date = parsed.Date
	evt.State = event.DeriveState(fields.Address)

	if !event.IsRelevant(evt) {
		logger.Debug("Dropping irrelevant card", logger.Fields{
			"card":  idx,
			"title": parsed.Title,
		})
		return nil, nil
	}

	return evt, nil
}

// expandCard clicks the card's expand control, if any, and waits briefly
// for the details section to appear. Best effort throughout.
func (s *Scraper) expandCard(ctx context.Context, idx int) {
	clicked, err := evalBool(ctx, fmt.Sprintf(`(() => {
		const cards = %s;
		const card = cards[%d];
		if (!card) return false;
		const control = card.querySelector(
			'[aria-expanded="false"], .expand, .show-more, .el-collapse-item__header, button.more');
		if (!control) return false;
		control.click();
		return true;
	})()`, jsCards, idx))
	if err != nil || !clicked {
		return
	}

	expandCtx, cancel := context.WithTimeout(ctx, expandWait)
	defer cancel()
	err = pollUntil(expandCtx, pollInterval, func(ctx context.Context) (bool, error) {
		return evalBool(ctx, fmt.Sprintf(`(() => {
			const card = %s[%d];
			if (!card) return false;
			const expanded = card.querySelector('[style*="height: auto"], .expanded, .el-collapse-item.is-active');
			if (expanded && (expanded.textContent || '').length > 50) return true;
			return /address|contact/i.test(card.textContent || '');
		})()`, jsCards, idx))
	})
	if err != nil {
		logger.Debug("Card did not expand in time", logger.Fields{"card": idx})
	}
}

// collapseCard closes the expansion before the next card. Best effort.
func (s *Scraper) collapseCard(ctx context.Context, idx int) {
	_, _ = evalBool(ctx, fmt.Sprintf(`(() => {
		const card = %s[%d];
		if (!card) return false;
		const control = card.querySelector('[aria-expanded="true"], .el-collapse-item.is-active .el-collapse-item__header');
		if (!control) return false;
		control.click();
		return true;
	})()`, jsCards, idx))
}

// cardHTML returns the card's outer HTML for offline parsing.
func (s *Scraper) cardHTML(ctx context.Context, idx int) (string, error) {
	return evalString(ctx, fmt.Sprintf(`(() => {
		const card = %s[%d];
		return card ? card.outerHTML : '';
	})()`, jsCards, idx))
}

// readCardFields parses an expanded card's markup. Pure: all browser state
// has already been captured in the HTML string.
func readCardFields(html string) (cardFields, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return cardFields{}, fmt.Errorf("parsing card HTML: %w", err)
	}

	var fields cardFields
	fields.FullText = normalizeSpace(doc.Text())

	if icon := doc.Find("img").First(); icon.Length() > 0 {
		fields.IconURL, _ = icon.Attr("src")
	}

	fields.Title = normalizeSpace(doc.Find("h1, h2, h3, h4, .card-title, .title").First().Text())
	fields.Subtitle = normalizeSpace(doc.Find("h5, h6, .card-subtitle, .subtitle").First().Text())

	if mapLink := doc.Find(`a[href*="maps"]`).First(); mapLink.Length() > 0 {
		fields.MapURL, _ = mapLink.Attr("href")
		fields.Address = addressLines(mapLink)
	}

	fields.Description = firstDescription(doc)

	contact := contactBlock(doc)
	fields.ContactName = contactName(contact)
	if tel := doc.Find(`a[href^="tel:"]`).First(); tel.Length() > 0 {
		href, _ := tel.Attr("href")
		fields.Phone = strings.TrimPrefix(href, "tel:")
	}
	if mail := doc.Find(`a[href^="mailto:"]`).First(); mail.Length() > 0 {
		href, _ := mail.Attr("href")
		fields.Email = strings.TrimPrefix(href, "mailto:")
	}
	if fb := doc.Find(`a[href*="facebook"]`).First(); fb.Length() > 0 {
		fields.Facebook, _ = fb.Attr("href")
	}
	fields.Website = contactWebsite(contact, fields.Facebook)
	fields.EventType = detailValue(doc, "Type")

	return fields, nil
}

// firstDescription picks the first substantive paragraph: long enough to
// mean something and not part of the contact block.
func firstDescription(doc *goquery.Document) string {
	var description string
	doc.Find("p").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := normalizeSpace(sel.Text())
		if len(text) < minDescriptionLength {
			return true
		}
		if isContactText(text) {
			return true
		}
		description = text
		return false
	})
	return description
}

// contactBlock returns the paragraph or section holding club contact
// details, if the card has one.
func contactBlock(doc *goquery.Document) *goquery.Selection {
	var block *goquery.Selection
	doc.Find("p, div, section").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if isContactText(sel.Text()) {
			block = sel
			return false
		}
		return true
	})
	return block
}

func isContactText(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "club contact") ||
		(strings.Contains(lower, "contact") && strings.Contains(lower, "name:"))
}

var contactNamePattern = regexp.MustCompile(`(?i)name:\s*(.+?)\s*(?:phone:|email:|website:|$)`)

// contactName reads the "Name: …" entry out of the contact block. Markup
// with a dedicated line element wins; otherwise the flattened text is
// scanned.
func contactName(contact *goquery.Selection) string {
	if contact == nil {
		return ""
	}

	var name string
	contact.Find("*").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := normalizeSpace(sel.Text())
		if rest, found := strings.CutPrefix(text, "Name:"); found && !strings.Contains(rest, ":") {
			name = strings.TrimSpace(rest)
			return false
		}
		return true
	})
	if name != "" {
		return name
	}

	if m := contactNamePattern.FindStringSubmatch(normalizeSpace(contact.Text())); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// contactWebsite returns the first plain http link in the contact block
// that is not the facebook, mail, phone, or map link.
func contactWebsite(contact *goquery.Selection, facebook string) string {
	if contact == nil {
		return ""
	}
	var website string
	contact.Find(`a[href^="http"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" || href == facebook {
			return true
		}
		if strings.Contains(href, "facebook") || strings.Contains(href, "maps") {
			return true
		}
		website = href
		return false
	})
	return website
}

// detailValue reads a labelled value out of the card's details list,
// supporting both dt/dd pairs and "Label: value" lines.
func detailValue(doc *goquery.Document, label string) string {
	var value string
	doc.Find("dt, .label, strong, b").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(sel.Text()), ":"))
		if !strings.EqualFold(text, label) {
			return true
		}
		if dd := sel.Next(); dd.Length() > 0 {
			value = normalizeSpace(dd.Text())
			return false
		}
		if parent := sel.Parent(); parent.Length() > 0 {
			line := normalizeSpace(parent.Text())
			if rest, found := strings.CutPrefix(line, label+":"); found {
				value = strings.TrimSpace(rest)
				return false
			}
			if fields := strings.SplitN(line, ":", 2); len(fields) == 2 {
				value = strings.TrimSpace(fields[1])
				return false
			}
		}
		return true
	})
	return value
}

// addressLines joins the address lines of the map link with ", ". The page
// renders each line as a child element, so child texts are joined; a plain
// text link falls back to its own text.
func addressLines(sel *goquery.Selection) string {
	lines := make([]string, 0, 4)
	sel.Children().Each(func(_ int, child *goquery.Selection) {
		if text := normalizeSpace(child.Text()); text != "" {
			lines = append(lines, text)
		}
	})
	if len(lines) == 0 {
		if text := normalizeSpace(sel.Text()); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, ", ")
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
