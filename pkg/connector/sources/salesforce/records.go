package salesforce

import (
	"bytes"

	"github.com/Mykobyhub/kibana-connectors/pkg/json"
)

// Text is a scalar field that may arrive as a JSON string, number, boolean
// or null. Valid is false when the field was null or absent.
type Text struct {
	Value string
	Valid bool
}

// NewText returns a valid Text.
func NewText(value string) Text {
	return Text{Value: value, Valid: true}
}

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = Text{}
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = NewText(s)
	default:
		*t = NewText(string(data))
	}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Value)
}

// Field returns the value for a document field: the string, or nil when
// the source value was null or absent.
func (t Text) Field() interface{} {
	if !t.Valid {
		return nil
	}
	return t.Value
}

// String returns the value, or "" when invalid.
func (t Text) String() string {
	return t.Value
}

// Attributes is the metadata block on every record.
type Attributes struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Reference is a related record embedded by a relationship path such as
// Owner or CreatedBy, or a row of a reference cache.
type Reference struct {
	ID    Text `json:"Id"`
	Name  Text `json:"Name"`
	Email Text `json:"Email"`
}

// QueryResult is one page of a query, or the payload of a relationship
// sub-select embedded in a parent record.
type QueryResult[T any] struct {
	TotalSize      int    `json:"totalSize"`
	Done           bool   `json:"done"`
	NextRecordsURL string `json:"nextRecordsUrl,omitempty"`
	Records        []T    `json:"records"`
}

// hasMore reports whether a follow-up page must be requested.
func (r *QueryResult[T]) hasMore() bool {
	return !r.Done && r.NextRecordsURL != ""
}

// Linked is embedded by every record type that can carry file attachments.
type Linked struct {
	ContentDocumentLinks *QueryResult[ContentDocumentLink] `json:"ContentDocumentLinks,omitempty"`
}

// Links returns the embedded content document links.
func (l Linked) Links() []ContentDocumentLink {
	if l.ContentDocumentLinks == nil {
		return nil
	}
	return l.ContentDocumentLinks.Records
}

// Address is a compound billing address.
type Address struct {
	Street     Text `json:"street"`
	City       Text `json:"city"`
	State      Text `json:"state"`
	PostalCode Text `json:"postalCode"`
	Country    Text `json:"country"`
}

type Account struct {
	Attributes       Attributes                       `json:"attributes"`
	ID               Text                             `json:"Id"`
	Name             Text                             `json:"Name"`
	Description      Text                             `json:"Description"`
	Type             Text                             `json:"Type"`
	Rating           Text                             `json:"Rating"`
	Website          Text                             `json:"Website"`
	CreatedDate      Text                             `json:"CreatedDate"`
	LastModifiedDate Text                             `json:"LastModifiedDate"`
	BillingAddress   *Address                         `json:"BillingAddress,omitempty"`
	Owner            *Reference                       `json:"Owner,omitempty"`
	Opportunities    *QueryResult[OpportunitySummary] `json:"Opportunities,omitempty"`
	Linked
}

// OpportunitySummary is the most recent opportunity selected with an account.
type OpportunitySummary struct {
	ID        Text `json:"Id"`
	Name      Text `json:"Name"`
	StageName Text `json:"StageName"`
}

type Opportunity struct {
	Attributes       Attributes `json:"attributes"`
	ID               Text       `json:"Id"`
	Name             Text       `json:"Name"`
	Description      Text       `json:"Description"`
	StageName        Text       `json:"StageName"`
	NextStep         Text       `json:"NextStep"`
	CreatedDate      Text       `json:"CreatedDate"`
	LastModifiedDate Text       `json:"LastModifiedDate"`
	Owner            *Reference `json:"Owner,omitempty"`
	Linked
}

// Contact references its account and owner by id; Account and Owner are
// filled from the run's reference caches.
type Contact struct {
	Attributes       Attributes `json:"attributes"`
	ID               Text       `json:"Id"`
	Name             Text       `json:"Name"`
	Description      Text       `json:"Description"`
	Email            Text       `json:"Email"`
	Phone            Text       `json:"Phone"`
	Title            Text       `json:"Title"`
	PhotoURL         Text       `json:"PhotoUrl"`
	LeadSource       Text       `json:"LeadSource"`
	AccountID        Text       `json:"AccountId"`
	OwnerID          Text       `json:"OwnerId"`
	CreatedDate      Text       `json:"CreatedDate"`
	LastModifiedDate Text       `json:"LastModifiedDate"`
	Account          *Reference `json:"Account,omitempty"`
	Owner            *Reference `json:"Owner,omitempty"`
	Linked
}

// Lead references its owner and conversion targets by id; the matching
// Reference fields are filled from the run's reference caches.
type Lead struct {
	Attributes             Attributes `json:"attributes"`
	ID                     Text       `json:"Id"`
	Name                   Text       `json:"Name"`
	Description            Text       `json:"Description"`
	Company                Text       `json:"Company"`
	Email                  Text       `json:"Email"`
	Phone                  Text       `json:"Phone"`
	Title                  Text       `json:"Title"`
	PhotoURL               Text       `json:"PhotoUrl"`
	Rating                 Text       `json:"Rating"`
	Status                 Text       `json:"Status"`
	LeadSource             Text       `json:"LeadSource"`
	OwnerID                Text       `json:"OwnerId"`
	ConvertedAccountID     Text       `json:"ConvertedAccountId"`
	ConvertedContactID     Text       `json:"ConvertedContactId"`
	ConvertedOpportunityID Text       `json:"ConvertedOpportunityId"`
	ConvertedDate          Text       `json:"ConvertedDate"`
	CreatedDate            Text       `json:"CreatedDate"`
	LastModifiedDate       Text       `json:"LastModifiedDate"`
	Owner                  *Reference `json:"Owner,omitempty"`
	ConvertedAccount       *Reference `json:"ConvertedAccount,omitempty"`
	ConvertedContact       *Reference `json:"ConvertedContact,omitempty"`
	ConvertedOpportunity   *Reference `json:"ConvertedOpportunity,omitempty"`
	Linked
}

type Campaign struct {
	Attributes       Attributes `json:"attributes"`
	ID               Text       `json:"Id"`
	Name             Text       `json:"Name"`
	Description      Text       `json:"Description"`
	Type             Text       `json:"Type"`
	Status           Text       `json:"Status"`
	IsActive         bool       `json:"IsActive"`
	StartDate        Text       `json:"StartDate"`
	EndDate          Text       `json:"EndDate"`
	CreatedDate      Text       `json:"CreatedDate"`
	LastModifiedDate Text       `json:"LastModifiedDate"`
	Owner            *Reference `json:"Owner,omitempty"`
	Parent           *Reference `json:"Parent,omitempty"`
	Linked
}

// Case carries its emails and comments as sub-selects. Feeds is attached by
// a separate CaseFeed query before the case is yielded.
type Case struct {
	Attributes       Attributes                 `json:"attributes"`
	ID               Text                       `json:"Id"`
	Subject          Text                       `json:"Subject"`
	Description      Text                       `json:"Description"`
	CaseNumber       Text                       `json:"CaseNumber"`
	Status           Text                       `json:"Status"`
	AccountID        Text                       `json:"AccountId"`
	ParentID         Text                       `json:"ParentId"`
	IsClosed         bool                       `json:"IsClosed"`
	IsDeleted        bool                       `json:"IsDeleted"`
	CreatedDate      Text                       `json:"CreatedDate"`
	LastModifiedDate Text                       `json:"LastModifiedDate"`
	Owner            *Reference                 `json:"Owner,omitempty"`
	CreatedBy        *Reference                 `json:"CreatedBy,omitempty"`
	EmailMessages    *QueryResult[EmailMessage] `json:"EmailMessages,omitempty"`
	CaseComments     *QueryResult[CaseComment]  `json:"CaseComments,omitempty"`
	Feeds            []CaseFeed                 `json:"Feeds,omitempty"`
	Linked
}

// Emails returns the case's email messages.
func (c *Case) Emails() []EmailMessage {
	if c.EmailMessages == nil {
		return nil
	}
	return c.EmailMessages.Records
}

// Comments returns the case's comments.
func (c *Case) Comments() []CaseComment {
	if c.CaseComments == nil {
		return nil
	}
	return c.CaseComments.Records
}

type EmailMessage struct {
	ID          Text       `json:"Id"`
	ParentID    Text       `json:"ParentId"`
	Subject     Text       `json:"Subject"`
	TextBody    Text       `json:"TextBody"`
	FromName    Text       `json:"FromName"`
	FromAddress Text       `json:"FromAddress"`
	ToAddress   Text       `json:"ToAddress"`
	CcAddress   Text       `json:"CcAddress"`
	BccAddress  Text       `json:"BccAddress"`
	Status      Text       `json:"Status"`
	MessageDate Text       `json:"MessageDate"`
	CreatedDate Text       `json:"CreatedDate"`
	CreatedBy   *Reference `json:"CreatedBy,omitempty"`
}

type CaseComment struct {
	ID               Text       `json:"Id"`
	ParentID         Text       `json:"ParentId"`
	CommentBody      Text       `json:"CommentBody"`
	CreatedDate      Text       `json:"CreatedDate"`
	LastModifiedDate Text       `json:"LastModifiedDate"`
	CreatedBy        *Reference `json:"CreatedBy,omitempty"`
}

// CaseFeed is a feed post on a case with its nested comments.
type CaseFeed struct {
	ID               Text                      `json:"Id"`
	ParentID         Text                      `json:"ParentId"`
	Type             Text                      `json:"Type"`
	Title            Text                      `json:"Title"`
	LinkURL          Text                      `json:"LinkUrl"`
	CommentCount     int                       `json:"CommentCount"`
	IsDeleted        bool                      `json:"IsDeleted"`
	CreatedDate      Text                      `json:"CreatedDate"`
	LastModifiedDate Text                      `json:"LastModifiedDate"`
	CreatedBy        *Reference                `json:"CreatedBy,omitempty"`
	FeedComments     *QueryResult[FeedComment] `json:"FeedComments,omitempty"`
}

// Comments returns the feed post's comments.
func (f *CaseFeed) Comments() []FeedComment {
	if f.FeedComments == nil {
		return nil
	}
	return f.FeedComments.Records
}

type FeedComment struct {
	ID           Text       `json:"Id"`
	ParentID     Text       `json:"ParentId"`
	CommentBody  Text       `json:"CommentBody"`
	LastEditDate Text       `json:"LastEditDate"`
	IsDeleted    bool       `json:"IsDeleted"`
	CreatedBy    *Reference `json:"CreatedBy,omitempty"`
}

// ContentDocumentLink associates one content document with one parent
// record. LinkedEntityID is only selected by standalone link queries; links
// embedded in a parent record belong to that parent.
type ContentDocumentLink struct {
	ID              Text             `json:"Id"`
	LinkedEntityID  Text             `json:"LinkedEntityId"`
	ContentDocument *ContentDocument `json:"ContentDocument,omitempty"`
}

type ContentDocument struct {
	ID                     Text            `json:"Id"`
	Title                  Text            `json:"Title"`
	Description            Text            `json:"Description"`
	FileExtension          Text            `json:"FileExtension"`
	ContentSize            int64           `json:"ContentSize"`
	CreatedDate            Text            `json:"CreatedDate"`
	LastModifiedDate       Text            `json:"LastModifiedDate"`
	Owner                  *Reference      `json:"Owner,omitempty"`
	CreatedBy              *Reference      `json:"CreatedBy,omitempty"`
	LatestPublishedVersion *ContentVersion `json:"LatestPublishedVersion,omitempty"`
}

type ContentVersion struct {
	ID            Text `json:"Id"`
	VersionNumber Text `json:"VersionNumber"`
	CreatedDate   Text `json:"CreatedDate"`
}

// describeGlobal is the payload of the SObject listing endpoint.
type describeGlobal struct {
	SObjects []struct {
		Name      string `json:"name"`
		Queryable bool   `json:"queryable"`
	} `json:"sobjects"`
}

// describeSObject is the payload of the per-type describe endpoint.
type describeSObject struct {
	Fields []struct {
		Name string `json:"name"`
	} `json:"fields"`
}
