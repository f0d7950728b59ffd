package salesforce

import (
	"sort"
	"strings"

	"github.com/Mykobyhub/kibana-connectors/pkg/connector/core"
)

// Mapper turns typed records into search documents. Scalar fields that were
// null or absent in the record map to nil.
type Mapper struct {
	baseURL string
}

// NewMapper creates a mapper that builds record links under baseURL.
func NewMapper(baseURL string) *Mapper {
	return &Mapper{baseURL: strings.TrimRight(baseURL, "/")}
}

// link returns the record URL for id, or nil when id is absent.
func (m *Mapper) link(id Text) interface{} {
	if !id.Valid || id.Value == "" {
		return nil
	}
	return m.baseURL + "/" + id.Value
}

func (m *Mapper) newDocument(id Text, kind string) core.Document {
	return core.Document{
		core.FieldID:     id.Value,
		core.FieldType:   kind,
		core.FieldSource: SourceName,
		"url":            m.link(id),
	}
}

func refName(ref *Reference) interface{} {
	if ref == nil {
		return nil
	}
	return ref.Name.Field()
}

func refEmail(ref *Reference) interface{} {
	if ref == nil {
		return nil
	}
	return ref.Email.Field()
}

func (m *Mapper) refLink(ref *Reference) interface{} {
	if ref == nil {
		return nil
	}
	return m.link(ref.ID)
}

// MapAccount maps an account and its most recent opportunity.
func (m *Mapper) MapAccount(a *Account) core.Document {
	doc := m.newDocument(a.ID, KindAccount)
	doc["account_type"] = a.Type.Field()
	doc["address"] = formatAddress(a.BillingAddress)
	doc["body"] = a.Description.Field()
	doc["content_source_id"] = a.ID.Value
	doc["created_at"] = a.CreatedDate.Field()
	doc["last_updated"] = a.LastModifiedDate.Field()
	doc["owner"] = refName(a.Owner)
	doc["owner_email"] = refEmail(a.Owner)
	doc["open_activities"] = ""
	doc["open_activities_urls"] = ""
	doc["rating"] = a.Rating.Field()
	doc["title"] = a.Name.Field()
	doc["website_url"] = a.Website.Field()

	tags := []string{}
	if a.Type.Valid {
		tags = append(tags, a.Type.Value)
	}
	doc["tags"] = tags

	doc["opportunity_name"] = nil
	doc["opportunity_status"] = nil
	doc["opportunity_url"] = nil
	if a.Opportunities != nil && len(a.Opportunities.Records) > 0 {
		opp := a.Opportunities.Records[0]
		doc["opportunity_name"] = opp.Name.Field()
		doc["opportunity_status"] = opp.StageName.Field()
		doc["opportunity_url"] = m.link(opp.ID)
	}
	return doc
}

// formatAddress joins the present address parts with ", ".
func formatAddress(addr *Address) interface{} {
	if addr == nil {
		return nil
	}
	var parts []string
	for _, part := range []Text{addr.Street, addr.City, addr.State, addr.PostalCode, addr.Country} {
		if part.Valid && part.Value != "" {
			parts = append(parts, part.Value)
		}
	}
	return strings.Join(parts, ", ")
}

func (m *Mapper) MapOpportunity(o *Opportunity) core.Document {
	doc := m.newDocument(o.ID, KindOpportunity)
	doc["body"] = o.Description.Field()
	doc["content_source_id"] = o.ID.Value
	doc["created_at"] = o.CreatedDate.Field()
	doc["last_updated"] = o.LastModifiedDate.Field()
	doc["next_step"] = o.NextStep.Field()
	doc["owner"] = refName(o.Owner)
	doc["owner_email"] = refEmail(o.Owner)
	doc["status"] = o.StageName.Field()
	doc["title"] = o.Name.Field()
	return doc
}

func (m *Mapper) MapContact(c *Contact) core.Document {
	doc := m.newDocument(c.ID, KindContact)
	doc["account"] = refName(c.Account)
	doc["account_url"] = m.refLink(c.Account)
	doc["body"] = c.Description.Field()
	doc["created_at"] = c.CreatedDate.Field()
	doc["email"] = c.Email.Field()
	doc["job_title"] = c.Title.Field()
	doc["last_updated"] = c.LastModifiedDate.Field()
	doc["lead_source"] = c.LeadSource.Field()
	doc["owner"] = refName(c.Owner)
	doc["owner_url"] = m.ownerLink(c.Owner, c.OwnerID)
	doc["phone"] = c.Phone.Field()
	doc["thumbnail"] = m.thumbnail(c.PhotoURL)
	doc["title"] = c.Name.Field()
	return doc
}

func (m *Mapper) MapLead(l *Lead) core.Document {
	doc := m.newDocument(l.ID, KindLead)
	doc["body"] = l.Description.Field()
	doc["company"] = l.Company.Field()
	doc["converted_account"] = refName(l.ConvertedAccount)
	doc["converted_account_url"] = m.refLink(l.ConvertedAccount)
	doc["converted_at"] = l.ConvertedDate.Field()
	doc["converted_contact"] = refName(l.ConvertedContact)
	doc["converted_contact_url"] = m.refLink(l.ConvertedContact)
	doc["converted_opportunity"] = refName(l.ConvertedOpportunity)
	doc["converted_opportunity_url"] = m.refLink(l.ConvertedOpportunity)
	doc["created_at"] = l.CreatedDate.Field()
	doc["email"] = l.Email.Field()
	doc["job_title"] = l.Title.Field()
	doc["last_updated"] = l.LastModifiedDate.Field()
	doc["lead_source"] = l.LeadSource.Field()
	doc["owner"] = refName(l.Owner)
	doc["owner_url"] = m.ownerLink(l.Owner, l.OwnerID)
	doc["phone"] = l.Phone.Field()
	doc["rating"] = l.Rating.Field()
	doc["status"] = l.Status.Field()
	doc["thumbnail"] = m.thumbnail(l.PhotoURL)
	doc["title"] = l.Name.Field()
	return doc
}

func (m *Mapper) ownerLink(owner *Reference, ownerID Text) interface{} {
	if owner != nil && owner.ID.Valid {
		return m.link(owner.ID)
	}
	return m.link(ownerID)
}

// thumbnail resolves a photo path against the instance URL.
func (m *Mapper) thumbnail(photoURL Text) interface{} {
	if !photoURL.Valid || photoURL.Value == "" {
		return nil
	}
	return m.baseURL + photoURL.Value
}

func (m *Mapper) MapCampaign(c *Campaign) core.Document {
	doc := m.newDocument(c.ID, KindCampaign)
	doc["body"] = c.Description.Field()
	doc["campaign_type"] = c.Type.Field()
	doc["created_at"] = c.CreatedDate.Field()
	doc["end_date"] = c.EndDate.Field()
	doc["last_updated"] = c.LastModifiedDate.Field()
	doc["owner"] = refName(c.Owner)
	doc["owner_email"] = refEmail(c.Owner)
	doc["parent"] = refName(c.Parent)
	doc["parent_url"] = m.refLink(c.Parent)
	doc["start_date"] = c.StartDate.Field()
	doc["status"] = c.Status.Field()
	doc["title"] = c.Name.Field()

	if c.IsActive {
		doc["state"] = "active"
	} else {
		doc["state"] = "archived"
	}
	return doc
}

// MapCase maps a case, merging its feed posts, emails and comments into
// body and the participant lists.
func (m *Mapper) MapCase(c *Case) core.Document {
	doc := m.newDocument(c.ID, KindCase)
	doc["account_id"] = c.AccountID.Field()
	doc["body"] = caseBody(c)
	doc["case_number"] = c.CaseNumber.Field()
	doc["created_at"] = c.CreatedDate.Field()
	doc["created_by"] = refName(c.CreatedBy)
	doc["created_by_email"] = refEmail(c.CreatedBy)
	doc["is_closed"] = c.IsClosed
	doc["last_updated"] = c.LastModifiedDate.Field()
	doc["owner"] = refName(c.Owner)
	doc["owner_email"] = refEmail(c.Owner)
	doc["status"] = c.Status.Field()
	doc["title"] = c.Subject.Field()

	p := caseParticipants(c)
	doc["participant_ids"] = p.ids.sorted()
	doc["participant_emails"] = p.emails.sorted()
	doc["participants"] = p.names.sorted()
	return doc
}

// caseBody joins, with a blank line between sections: each feed post's
// comments (one per line), the description, each email as subject then
// text, and each case comment. Empty sections are skipped.
func caseBody(c *Case) string {
	var sections []string
	add := func(s string) {
		if s != "" {
			sections = append(sections, s)
		}
	}

	for i := range c.Feeds {
		var comments []string
		for _, fc := range c.Feeds[i].Comments() {
			if fc.CommentBody.Value != "" {
				comments = append(comments, fc.CommentBody.Value)
			}
		}
		add(strings.Join(comments, "\n"))
	}

	add(c.Description.Value)

	for _, email := range c.Emails() {
		var lines []string
		if email.Subject.Value != "" {
			lines = append(lines, email.Subject.Value)
		}
		if email.TextBody.Value != "" {
			lines = append(lines, email.TextBody.Value)
		}
		add(strings.Join(lines, "\n"))
	}

	for _, comment := range c.Comments() {
		add(comment.CommentBody.Value)
	}

	return strings.Join(sections, "\n\n")
}

type stringSet map[string]struct{}

func (s stringSet) add(values ...string) {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			s[v] = struct{}{}
		}
	}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

type participants struct {
	ids, emails, names stringSet
}

// caseParticipants collects everyone who owns, created or wrote on the case:
// the case itself, its comments, feed posts, feed comments and emails.
// Email addresses from every email header are included too.
func caseParticipants(c *Case) participants {
	p := participants{ids: stringSet{}, emails: stringSet{}, names: stringSet{}}
	addRef := func(ref *Reference) {
		if ref == nil {
			return
		}
		p.ids.add(ref.ID.Value)
		p.emails.add(ref.Email.Value)
		p.names.add(ref.Name.Value)
	}

	addRef(c.Owner)
	addRef(c.CreatedBy)
	for _, comment := range c.Comments() {
		addRef(comment.CreatedBy)
	}
	for i := range c.Feeds {
		addRef(c.Feeds[i].CreatedBy)
		for _, fc := range c.Feeds[i].Comments() {
			addRef(fc.CreatedBy)
		}
	}
	for _, email := range c.Emails() {
		addRef(email.CreatedBy)
		for _, header := range []Text{email.FromAddress, email.ToAddress, email.CcAddress, email.BccAddress} {
			p.emails.add(splitAddresses(header.Value)...)
		}
	}
	return p
}

// splitAddresses splits an address header on ";" and ",".
func splitAddresses(header string) []string {
	return strings.FieldsFunc(header, func(r rune) bool { return r == ';' || r == ',' })
}

// MapContentDocument maps a deduplicated content document. Content is
// attached separately.
func (m *Mapper) MapContentDocument(content LinkedContent) core.Document {
	cd := content.Document
	doc := m.newDocument(cd.ID, KindContentDocument)
	doc["content_size"] = cd.ContentSize
	doc["created_at"] = cd.CreatedDate.Field()
	doc["created_by"] = refName(cd.CreatedBy)
	doc["created_by_email"] = refEmail(cd.CreatedBy)
	doc["description"] = cd.Description.Field()
	doc["file_extension"] = cd.FileExtension.Field()
	doc["last_updated"] = cd.LastModifiedDate.Field()
	doc["linked_ids"] = content.LinkedIDs
	doc["owner"] = refName(cd.Owner)
	doc["owner_email"] = refEmail(cd.Owner)
	doc["title"] = contentTitle(cd)

	doc["version_number"] = nil
	doc["version_url"] = nil
	if v := cd.LatestPublishedVersion; v != nil {
		doc["version_number"] = v.VersionNumber.Field()
		doc["version_url"] = m.link(v.ID)
	}
	return doc
}

// contentTitle appends the file extension to the stored title.
func contentTitle(cd *ContentDocument) interface{} {
	if !cd.Title.Valid {
		return nil
	}
	if cd.FileExtension.Value == "" {
		return cd.Title.Value
	}
	return cd.Title.Value + "." + cd.FileExtension.Value
}
