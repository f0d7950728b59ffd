package salesforce

const accountPayload = `{
  "totalSize": 1,
  "done": true,
  "records": [{
    "attributes": {"type": "Account", "url": "/services/data/v59.0/sobjects/Account/account_id"},
    "Type": "Customer - Direct",
    "Owner": {
      "attributes": {"type": "User", "url": "/services/data/v59.0/sobjects/User/user_id"},
      "Id": "user_id", "Name": "Frodo", "Email": "frodo@tlotr.com"
    },
    "Id": "account_id",
    "Rating": "Hot",
    "Website": "www.tlotr.com",
    "LastModifiedDate": "",
    "CreatedDate": "",
    "Opportunities": {
      "totalSize": 1,
      "done": true,
      "records": [{
        "attributes": {"type": "Opportunity", "url": "/services/data/v59.0/sobjects/Opportunity/opportunity_id"},
        "Id": "opportunity_id", "Name": "The Fellowship", "StageName": "Closed Won"
      }]
    },
    "Name": "TLOTR",
    "BillingAddress": {
      "city": "The Shire",
      "country": "Middle Earth",
      "postalCode": 111,
      "state": "Eriador",
      "street": "The Burrow under the Hill, Bag End, Hobbiton"
    },
    "Description": "A story about the One Ring."
  }]
}`

const opportunityPayload = `{
  "totalSize": 1,
  "done": true,
  "records": [{
    "attributes": {"type": "Opportunity", "url": "/services/data/v59.0/sobjects/Opportunity/opportunity_id"},
    "Description": "A fellowship of the races of Middle Earth",
    "Owner": {
      "attributes": {"type": "User", "url": "/services/data/v59.0/sobjects/User/user_id"},
      "Id": "user_id", "Email": "frodo@tlotr.com", "Name": "Frodo"
    },
    "LastModifiedDate": "",
    "Name": "The Fellowship",
    "StageName": "Closed Won",
    "CreatedDate": "",
    "Id": "opportunity_id"
  }]
}`

const contactPayload = `{
  "records": [{
    "attributes": {"type": "Contact", "url": "/services/data/v59.0/sobjects/Contact/contact_id"},
    "OwnerId": "user_id",
    "Phone": "12345678",
    "Name": "Gandalf",
    "AccountId": "account_id",
    "LastModifiedDate": "",
    "Description": "The White",
    "Title": "Wizard",
    "CreatedDate": "",
    "LeadSource": "Partner Referral",
    "PhotoUrl": "/services/images/photo/photo_id",
    "Id": "contact_id",
    "Email": "gandalf@tlotr.com"
  }]
}`

const leadPayload = `{
  "records": [{
    "attributes": {"type": "Lead", "url": "/services/data/v59.0/sobjects/Lead/lead_id"},
    "Name": "Sauron",
    "Status": "Working - Contacted",
    "Company": "Mordor Inc.",
    "Description": "Forger of the One Ring",
    "Email": "sauron@tlotr.com",
    "Phone": "09876543",
    "Title": "Dark Lord",
    "PhotoUrl": "/services/images/photo/photo_id",
    "Rating": "Hot",
    "LastModifiedDate": "",
    "LeadSource": "Partner Referral",
    "OwnerId": "user_id",
    "ConvertedAccountId": null,
    "ConvertedContactId": null,
    "ConvertedOpportunityId": null,
    "ConvertedDate": null,
    "Id": "lead_id"
  }]
}`

const campaignPayload = `{
  "records": [{
    "attributes": {"type": "Campaign", "url": "/services/data/v59.0/sobjects/Campaign/campaign_id"},
    "Name": "Defend the Gap",
    "IsActive": true,
    "Type": "War",
    "Description": "Orcs are raiding the Gap of Rohan",
    "Status": "planned",
    "Id": "campaign_id",
    "Parent": {
      "attributes": {"type": "User", "url": "/services/data/v59.0/sobjects/User/user_id"},
      "Id": "user_id", "Name": "Théoden"
    },
    "Owner": {
      "attributes": {"type": "User", "url": "/services/data/v59.0/sobjects/User/user_id"},
      "Id": "user_id", "Name": "Saruman", "Email": "saruman@tlotr.com"
    },
    "StartDate": "",
    "EndDate": ""
  }]
}`

const casePayload = `{
  "records": [{
    "attributes": {"type": "Case", "url": "/services/data/v59.0/sobjects/Case/case_id"},
    "Status": "New",
    "AccountId": "account_id",
    "Description": "The One Ring",
    "Subject": "It needs to be destroyed",
    "Owner": {
      "attributes": {"type": "Name", "url": "/services/data/v59.0/sobjects/User/user_id"},
      "Email": "frodo@tlotr.com", "Name": "Frodo", "Id": "user_id"
    },
    "CreatedBy": {
      "attributes": {"type": "User", "url": "/services/data/v59.0/sobjects/User/user_id_2"},
      "Id": "user_id_2", "Email": "gandalf@tlotr.com", "Name": "Gandalf"
    },
    "Id": "case_id",
    "EmailMessages": {
      "records": [{
        "attributes": {"type": "EmailMessage", "url": "/services/data/v59.0/sobjects/EmailMessage/email_message_id"},
        "CreatedDate": "2023-08-11T00:00:00.000+0000",
        "LastModifiedById": "user_id",
        "ParentId": "case_id",
        "MessageDate": "2023-08-01T00:00:00.000+0000",
        "TextBody": "Maybe I should do something?",
        "Subject": "Ring?!",
        "FromName": "Frodo",
        "FromAddress": "frodo@tlotr.com",
        "ToAddress": "gandalf@tlotr.com",
        "CcAddress": "elrond@tlotr.com",
        "BccAddress": "samwise@tlotr.com",
        "Status": "",
        "IsDeleted": false,
        "FirstOpenedDate": "2023-08-02T00:00:00.000+0000",
        "CreatedBy": {
          "attributes": {"type": "Name", "url": "/services/data/v59.0/sobjects/User/user_id"},
          "Name": "Frodo", "Id": "user_id", "Email": "frodo@tlotr.com"
        }
      }]
    },
    "CaseComments": {
      "records": [{
        "attributes": {"type": "CaseComment", "url": "/services/data/v59.0/sobjects/CaseComment/case_comment_id"},
        "CreatedDate": "2023-08-03T00:00:00.000+0000",
        "LastModifiedById": "user_id_3",
        "CommentBody": "You have my axe",
        "LastModifiedDate": "2023-08-03T00:00:00.000+0000",
        "CreatedBy": {
          "attributes": {"type": "Name", "url": "/services/data/v59.0/sobjects/User/user_id_3"},
          "Name": "Gimli", "Id": "user_id_3", "Email": "gimli@tlotr.com"
        },
        "ParentId": "case_id",
        "Id": "case_comment_id"
      }]
    },
    "CaseNumber": "00001234",
    "ParentId": "",
    "CreatedDate": "2023-08-01T00:00:00.000+0000",
    "IsDeleted": false,
    "IsClosed": false,
    "LastModifiedDate": "2023-08-11T00:00:00.000+0000"
  }]
}`

const caseFeedPayload = `{
  "records": [{
    "attributes": {"type": "CaseFeed", "url": "/services/data/v59.0/sobjects/CaseFeed/case_feed_id"},
    "CreatedBy": {
      "attributes": {"type": "Name", "url": "/services/data/v59.0/sobjects/User/user_id_4"},
      "Id": "user_id_4", "Email": "galadriel@tlotr.com", "Name": "Galadriel"
    },
    "CommentCount": 2,
    "LastModifiedDate": "2023-08-09T00:00:00.000+0000",
    "Type": "TextPost",
    "Title": null,
    "IsDeleted": false,
    "LinkUrl": "https://fake.my.salesforce.com/case_feed_id",
    "CreatedDate": "2023-08-08T00:00:00.000+0000",
    "Id": "case_feed_id",
    "FeedComments": {
      "records": [{
        "attributes": {"type": "FeedComment", "url": "/services/data/v59.0/sobjects/FeedComment/feed_comment_id"},
        "CreatedBy": {
          "attributes": {"type": "Name", "url": "/services/data/v59.0/sobjects/User/user_id_4"},
          "Id": "user_id_4", "Email": "galadriel@tlotr.com", "Name": "Galadriel"
        },
        "IsDeleted": false,
        "Id": "feed_comment_id",
        "ParentId": "case_feed_id",
        "LastEditById": "user_id_4",
        "LastEditDate": "2023-08-08T00:00:00.000+0000",
        "CommentBody": "I know what it is you saw"
      }]
    },
    "ParentId": "case_id"
  }]
}`

const userPayload = `{
  "done": true,
  "records": [{"Id": "user_id", "Name": "Frodo", "Email": "frodo@tlotr.com"}]
}`

const contentDocumentLinksPayload = `{
  "records": [{
    "attributes": {"type": "ContentDocumentLink", "url": "/services/data/v59.0/sobjects/ContentDocumentLink/content_document_link_id"},
    "Id": "content_document_link_id",
    "ContentDocument": {
      "attributes": {"type": "ContentDocument", "url": "/services/data/v59.0/sobjects/ContentDocument/content_document_id"},
      "Id": "content_document_id",
      "Description": "A file about a ring.",
      "Title": "the_ring",
      "ContentSize": 1000,
      "FileExtension": "txt",
      "CreatedDate": "",
      "LatestPublishedVersion": {
        "attributes": {"type": "ContentVersion", "url": "/services/data/v59.0/sobjects/ContentVersion/content_version_id"},
        "Id": "content_version_id",
        "CreatedDate": "",
        "VersionNumber": "2"
      },
      "Owner": {
        "attributes": {"type": "User", "url": "/services/data/v59.0/sobjects/User/user_id"},
        "Id": "user_id", "Name": "Frodo", "Email": "frodo@tlotr.com"
      },
      "CreatedBy": {
        "attributes": {"type": "User", "url": "/services/data/v59.0/sobjects/User/user_id"},
        "Id": "user_id", "Name": "Frodo", "Email": "frodo@tlotr.com"
      },
      "LastModifiedDate": ""
    }
  }]
}`

// payloadsByTable maps the FROM table of a query to its canned response.
var payloadsByTable = map[string]string{
	"Account":     accountPayload,
	"Opportunity": opportunityPayload,
	"Contact":     contactPayload,
	"Lead":        leadPayload,
	"Campaign":    campaignPayload,
	"Case":        casePayload,
	"CaseFeed":    caseFeedPayload,
	"User":        userPayload,
}
