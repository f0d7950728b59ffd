package salesforce

import (
	"context"
	stderrors "errors"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Queryable fields requested per SObject. Fields the org does not expose
// are dropped before the query is built.
var (
	accountFields     = []string{"Name", "Description", "BillingAddress", "Type", "Website", "Rating", "Department"}
	opportunityFields = []string{"Name", "Description", "StageName", "NextStep"}
	contactFields     = []string{"Name", "Description", "Email", "Phone", "Title", "PhotoUrl", "LeadSource", "AccountId", "OwnerId"}
	leadFields        = []string{
		"Name", "Description", "Company", "Email", "Phone", "Title", "PhotoUrl", "Rating", "Status", "LeadSource",
		"OwnerId", "ConvertedAccountId", "ConvertedContactId", "ConvertedOpportunityId", "ConvertedDate",
	}
	campaignFields = []string{"Name", "Description", "Type", "Status", "IsActive", "StartDate", "EndDate"}
	caseFields     = []string{"Subject", "Description", "CaseNumber", "Status", "AccountId", "ParentId", "IsClosed", "IsDeleted"}
)

// Relationship paths selected alongside the queryable fields.
var (
	ownerPaths     = []string{"Owner.Id", "Owner.Name", "Owner.Email"}
	createdByPaths = []string{"CreatedBy.Id", "CreatedBy.Name", "CreatedBy.Email"}
)

var contentDocumentPaths = []string{
	"ContentDocument.Id",
	"ContentDocument.Title",
	"ContentDocument.Description",
	"ContentDocument.ContentSize",
	"ContentDocument.FileExtension",
	"ContentDocument.CreatedDate",
	"ContentDocument.LastModifiedDate",
	"ContentDocument.LatestPublishedVersion.Id",
	"ContentDocument.LatestPublishedVersion.VersionNumber",
	"ContentDocument.LatestPublishedVersion.CreatedDate",
	"ContentDocument.Owner.Id",
	"ContentDocument.Owner.Name",
	"ContentDocument.Owner.Email",
	"ContentDocument.CreatedBy.Id",
	"ContentDocument.CreatedBy.Name",
	"ContentDocument.CreatedBy.Email",
}

// errStopIteration ends a page walk when the consumer stops ranging.
var errStopIteration = stderrors.New("iteration stopped")

// Accounts yields every account with its most recent opportunity and its
// content document links.
func (c *Client) Accounts(ctx context.Context, run *RunContext) iter.Seq2[*Account, error] {
	return records[Account](ctx, c, run, "Account", func(ctx context.Context) (string, error) {
		q, err := c.entityQuery(ctx, run, "Account", accountFields)
		if err != nil {
			return "", err
		}
		opportunities := NewQueryBuilder("Opportunities").
			WithID().
			WithFields("Name", "StageName").
			WithOrderBy("CreatedDate DESC").
			WithLimit(1).
			Build()
		return q.WithFields(ownerPaths...).WithJoin(opportunities).Build(), nil
	}, nil)
}

// Opportunities yields every opportunity.
func (c *Client) Opportunities(ctx context.Context, run *RunContext) iter.Seq2[*Opportunity, error] {
	return records[Opportunity](ctx, c, run, "Opportunity", func(ctx context.Context) (string, error) {
		q, err := c.entityQuery(ctx, run, "Opportunity", opportunityFields)
		if err != nil {
			return "", err
		}
		return q.WithFields(ownerPaths...).Build(), nil
	}, nil)
}

// Contacts yields every contact with Account and Owner resolved from the
// run's reference caches.
func (c *Client) Contacts(ctx context.Context, run *RunContext) iter.Seq2[*Contact, error] {
	return records[Contact](ctx, c, run, "Contact", func(ctx context.Context) (string, error) {
		q, err := c.entityQuery(ctx, run, "Contact", contactFields)
		if err != nil {
			return "", err
		}
		return q.Build(), nil
	}, func(ctx context.Context, page []Contact) error {
		for i := range page {
			contact := &page[i]
			var err error
			if contact.Account, err = run.lookup(ctx, "Account", contact.AccountID); err != nil {
				return err
			}
			if contact.Owner, err = run.lookup(ctx, "User", contact.OwnerID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Leads yields every lead with Owner and the conversion targets resolved
// from the run's reference caches.
func (c *Client) Leads(ctx context.Context, run *RunContext) iter.Seq2[*Lead, error] {
	return records[Lead](ctx, c, run, "Lead", func(ctx context.Context) (string, error) {
		q, err := c.entityQuery(ctx, run, "Lead", leadFields)
		if err != nil {
			return "", err
		}
		return q.Build(), nil
	}, func(ctx context.Context, page []Lead) error {
		for i := range page {
			lead := &page[i]
			var err error
			if lead.Owner, err = run.lookup(ctx, "User", lead.OwnerID); err != nil {
				return err
			}
			if lead.ConvertedAccount, err = run.lookup(ctx, "Account", lead.ConvertedAccountID); err != nil {
				return err
			}
			if lead.ConvertedContact, err = run.lookup(ctx, "Contact", lead.ConvertedContactID); err != nil {
				return err
			}
			if lead.ConvertedOpportunity, err = run.lookup(ctx, "Opportunity", lead.ConvertedOpportunityID); err != nil {
				return err
			}
		}
		return nil
	})
}

// Campaigns yields every campaign.
func (c *Client) Campaigns(ctx context.Context, run *RunContext) iter.Seq2[*Campaign, error] {
	return records[Campaign](ctx, c, run, "Campaign", func(ctx context.Context) (string, error) {
		q, err := c.entityQuery(ctx, run, "Campaign", campaignFields)
		if err != nil {
			return "", err
		}
		return q.WithFields(ownerPaths...).WithFields("Parent.Id", "Parent.Name").Build(), nil
	}, nil)
}

// Cases yields every case with its emails, comments and feed posts.
func (c *Client) Cases(ctx context.Context, run *RunContext) iter.Seq2[*Case, error] {
	return records[Case](ctx, c, run, "Case", func(ctx context.Context) (string, error) {
		q, err := c.entityQuery(ctx, run, "Case", caseFields)
		if err != nil {
			return "", err
		}
		q.WithFields(ownerPaths...).WithFields(createdByPaths...)

		if ok, err := run.IsQueryable(ctx, "EmailMessage"); err != nil {
			return "", err
		} else if ok {
			q.WithJoin(NewQueryBuilder("EmailMessages").
				WithID().
				WithFields("ParentId", "MessageDate", "CreatedDate", "Subject", "TextBody", "Status",
					"FromName", "FromAddress", "ToAddress", "CcAddress", "BccAddress").
				WithFields(createdByPaths...).
				Build())
		}
		if ok, err := run.IsQueryable(ctx, "CaseComment"); err != nil {
			return "", err
		} else if ok {
			q.WithJoin(NewQueryBuilder("CaseComments").
				WithID().
				WithDefaultMetafields().
				WithFields("ParentId", "CommentBody").
				WithFields(createdByPaths...).
				Build())
		}
		return q.Build(), nil
	}, func(ctx context.Context, page []Case) error {
		return c.attachCaseFeeds(ctx, run, page)
	})
}

// attachCaseFeeds fetches the feed posts of one page of cases in a single
// query and attaches them to their cases.
func (c *Client) attachCaseFeeds(ctx context.Context, run *RunContext, cases []Case) error {
	if len(cases) == 0 {
		return nil
	}
	ok, err := run.IsQueryable(ctx, "CaseFeed")
	if err != nil || !ok {
		return err
	}

	ids := make([]string, 0, len(cases))
	byID := make(map[string]*Case, len(cases))
	for i := range cases {
		if id := cases[i].ID.Value; id != "" {
			ids = append(ids, id)
			byID[id] = &cases[i]
		}
	}
	if len(ids) == 0 {
		return nil
	}

	feedComments := NewQueryBuilder("FeedComments").
		WithID().
		WithFields("ParentId", "CommentBody", "LastEditDate", "IsDeleted").
		WithFields(createdByPaths...).
		Build()
	soql := NewQueryBuilder("CaseFeed").
		WithID().
		WithDefaultMetafields().
		WithFields("ParentId", "Type", "Title", "LinkUrl", "CommentCount", "IsDeleted").
		WithFields(createdByPaths...).
		WithJoin(feedComments).
		WithWhere("ParentId IN " + inList(ids)).
		Build()

	return queryPages(ctx, c, soql, func(page []CaseFeed) error {
		for _, feed := range page {
			if owner, ok := byID[feed.ParentID.Value]; ok {
				owner.Feeds = append(owner.Feeds, feed)
			}
		}
		return nil
	})
}

// ContentDocumentLinks yields the links of the given parent records by
// querying ContentDocumentLink directly. Each link carries LinkedEntityID.
func (c *Client) ContentDocumentLinks(ctx context.Context, run *RunContext, linkedEntityIDs []string) iter.Seq2[*ContentDocumentLink, error] {
	if len(linkedEntityIDs) == 0 {
		return func(func(*ContentDocumentLink, error) bool) {}
	}
	return records[ContentDocumentLink](ctx, c, run, "ContentDocumentLink", func(ctx context.Context) (string, error) {
		return NewQueryBuilder("ContentDocumentLink").
			WithID().
			WithFields("LinkedEntityId").
			WithFields(contentDocumentPaths...).
			WithWhere("LinkedEntityId IN " + inList(linkedEntityIDs)).
			Build(), nil
	}, nil)
}

// entityQuery starts the query of a parent SObject: id, metadata fields,
// the queryable subset of fields, the content link sub-select when links
// are queryable, and the incremental filter when one is configured.
func (c *Client) entityQuery(ctx context.Context, run *RunContext, sobject string, fields []string) (*QueryBuilder, error) {
	selected, err := run.SelectQueryableFields(ctx, sobject, fields)
	if err != nil {
		return nil, err
	}
	q := NewQueryBuilder(sobject).WithID().WithDefaultMetafields().WithFields(selected...)

	linksQueryable, err := run.IsQueryable(ctx, "ContentDocumentLink")
	if err != nil {
		return nil, err
	}
	if linksQueryable {
		q.WithJoin(NewQueryBuilder("ContentDocumentLinks").
			WithID().
			WithFields(contentDocumentPaths...).
			Build())
	}

	if !c.config.ModifiedSince.IsZero() {
		q.WithWhere("LastModifiedDate > " + c.config.ModifiedSince.Format(time.RFC3339))
	}
	return q, nil
}

// records runs the query built by build and yields its records page by
// page. A type that is not queryable yields nothing. enrich, when set, is
// applied to each page before its records are yielded.
func records[T any](
	ctx context.Context,
	c *Client,
	run *RunContext,
	sobject string,
	build func(context.Context) (string, error),
	enrich func(context.Context, []T) error,
) iter.Seq2[*T, error] {
	return func(yield func(*T, error) bool) {
		ok, err := run.IsQueryable(ctx, sobject)
		if err != nil {
			yield(nil, err)
			return
		}
		if !ok {
			c.logger.Debug("sobject not queryable, skipping", zap.String("sobject", sobject))
			return
		}

		soql, err := build(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		c.logger.Debug("querying sobject", zap.String("sobject", sobject),
			zap.String("soql", strings.ReplaceAll(soql, "\n", " ")))

		err = queryPages(ctx, c, soql, func(page []T) error {
			if enrich != nil {
				if err := enrich(ctx, page); err != nil {
					return err
				}
			}
			for i := range page {
				if !yield(&page[i], nil) {
					return errStopIteration
				}
			}
			return nil
		})
		if err != nil && !stderrors.Is(err, errStopIteration) {
			yield(nil, err)
		}
	}
}
