package scraper

import (
	"testing"
)

const expandedCardHTML = `
<div class="el-card">
  <img src="https://cdn.mysideline.com.au/icons/masters.png" alt="">
  <h3>Newcastle Masters Carnival - 14 June 2026</h3>
  <h6>Hosted by Newcastle Old Boys</h6>
  <div class="details">
    <a href="https://maps.google.com/?q=newcastle">
      <div>Newcastle Sportsground No. 2</div>
      <div>Turton Road</div>
      <div>Broadmeadow NSW</div>
    </a>
    <p>Short.</p>
    <p>A full weekend of masters rugby league for over-35s, with divisions for every decade.</p>
    <p class="contact">Club Contact
      <span>Name: Dave Riley</span>
      <a href="tel:0412345678">0412 345 678</a>
      <a href="mailto:dave@newcastlemasters.au">Email</a>
      <a href="https://facebook.com/newcastlemasters">Facebook</a>
      <a href="https://newcastlemasters.au">Website</a>
    </p>
    <dl><dt>Type</dt><dd>Carnival</dd></dl>
  </div>
</div>`

func TestReadCardFields(t *testing.T) {
	fields, err := readCardFields(expandedCardHTML)
	if err != nil {
		t.Fatalf("readCardFields returned error: %v", err)
	}

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"IconURL", fields.IconURL, "https://cdn.mysideline.com.au/icons/masters.png"},
		{"Title", fields.Title, "Newcastle Masters Carnival - 14 June 2026"},
		{"Subtitle", fields.Subtitle, "Hosted by Newcastle Old Boys"},
		{"MapURL", fields.MapURL, "https://maps.google.com/?q=newcastle"},
		{"Address", fields.Address, "Newcastle Sportsground No. 2, Turton Road, Broadmeadow NSW"},
		{"Description", fields.Description, "A full weekend of masters rugby league for over-35s, with divisions for every decade."},
		{"ContactName", fields.ContactName, "Dave Riley"},
		{"Phone", fields.Phone, "0412345678"},
		{"Email", fields.Email, "dave@newcastlemasters.au"},
		{"Facebook", fields.Facebook, "https://facebook.com/newcastlemasters"},
		{"Website", fields.Website, "https://newcastlemasters.au"},
		{"EventType", fields.EventType, "Carnival"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}

	if fields.FullText == "" {
		t.Error("FullText should capture the card's flattened text")
	}
}

func TestReadCardFieldsInlineContactLine(t *testing.T) {
	html := `
<div class="card">
  <h2>Far North Carnival 2026</h2>
  <p>Contact Name: Sue Chen Phone: 0400 111 222 Email: sue@example.au</p>
</div>`

	fields, err := readCardFields(html)
	if err != nil {
		t.Fatalf("readCardFields returned error: %v", err)
	}
	if fields.ContactName != "Sue Chen" {
		t.Errorf("ContactName = %q, want %q", fields.ContactName, "Sue Chen")
	}
}

func TestReadCardFieldsLabelledType(t *testing.T) {
	html := `
<div class="card">
  <h2>Riverina Nines</h2>
  <div><strong>Type:</strong> Nines Tournament</div>
</div>`

	fields, err := readCardFields(html)
	if err != nil {
		t.Fatalf("readCardFields returned error: %v", err)
	}
	if fields.EventType != "Nines Tournament" {
		t.Errorf("EventType = %q, want %q", fields.EventType, "Nines Tournament")
	}
}

func TestReadCardFieldsSparseCard(t *testing.T) {
	fields, err := readCardFields(`<div class="card"><h2>Lonely Title</h2></div>`)
	if err != nil {
		t.Fatalf("readCardFields returned error: %v", err)
	}
	if fields.Title != "Lonely Title" {
		t.Errorf("Title = %q, want %q", fields.Title, "Lonely Title")
	}
	for name, got := range map[string]string{
		"Address":     fields.Address,
		"ContactName": fields.ContactName,
		"Phone":       fields.Phone,
		"Email":       fields.Email,
		"Website":     fields.Website,
	} {
		if got != "" {
			t.Errorf("%s = %q, want empty", name, got)
		}
	}
}

func TestAddressFallsBackToLinkText(t *testing.T) {
	html := `
<div class="card">
  <h2>Plain Address Card</h2>
  <a href="https://maps.google.com/?q=x">12 Oval Street, Dubbo NSW</a>
</div>`

	fields, err := readCardFields(html)
	if err != nil {
		t.Fatalf("readCardFields returned error: %v", err)
	}
	if fields.Address != "12 Oval Street, Dubbo NSW" {
		t.Errorf("Address = %q, want link text", fields.Address)
	}
}
