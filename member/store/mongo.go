package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	errorskg "github.com/sweetpotato0/ai-claims/errors"
	"github.com/sweetpotato0/ai-claims/member"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implements member.ProfileSource using MongoDB. Profiles are kept
// one document per member with the member id as _id.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// MongoConfig holds MongoDB connection configuration
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// DefaultMongoConfig returns default MongoDB configuration
func DefaultMongoConfig() *MongoConfig {
	return &MongoConfig{
		URI:        "mongodb://localhost:27017",
		Database:   "MemberDB",
		Collection: "MemberContainer",
	}
}

// Dates are stored as YYYY-MM-DD strings, the shape the CRM export uses.
type mongoNote struct {
	Date  string `bson:"date"`
	Type  string `bson:"type"`
	Agent string `bson:"agent"`
	Note  string `bson:"note"`
}

type mongoDocument struct {
	DocumentID string `bson:"document_id"`
	Type       string `bson:"type"`
	UploadDate string `bson:"upload_date"`
	ValidUntil string `bson:"valid_until,omitempty"`
	Provider   string `bson:"provider,omitempty"`
	Reason     string `bson:"reason,omitempty"`
}

type mongoPolicy struct {
	PlanName           string  `bson:"plan_name"`
	StartDate          string  `bson:"start_date"`
	RenewalDate        string  `bson:"renewal_date"`
	AnnualLimit        float64 `bson:"annual_limit"`
	UsedToDate         float64 `bson:"used_to_date"`
	LoyaltyBonusActive bool    `bson:"loyalty_bonus_active"`
}

type mongoProfile struct {
	ID                string          `bson:"_id"`
	Name              string          `bson:"name"`
	Plan              string          `bson:"plan"`
	Tier              string          `bson:"tier,omitempty"`
	Email             string          `bson:"email,omitempty"`
	Phone             string          `bson:"phone,omitempty"`
	Address           string          `bson:"address,omitempty"`
	DateOfBirth       string          `bson:"date_of_birth,omitempty"`
	InteractionNotes  []mongoNote     `bson:"interaction_notes"`
	UploadedDocuments []mongoDocument `bson:"uploaded_documents"`
	PolicyDetails     *mongoPolicy    `bson:"policy_details,omitempty"`
}

// NewMongoStore connects to MongoDB and returns a profile store.
func NewMongoStore(ctx context.Context, config *MongoConfig) (*MongoStore, error) {
	if config == nil {
		config = DefaultMongoConfig()
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
	}, nil
}

// Profile loads a member profile by id.
func (s *MongoStore) Profile(ctx context.Context, memberID string) (*member.Profile, error) {
	var doc mongoProfile
	err := s.collection.FindOne(ctx, bson.M{"_id": memberID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errorskg.NotFound("member", memberID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load member profile: %w", err)
	}
	return fromMongo(doc)
}

// Upsert stores the profile, replacing any existing document for the member.
func (s *MongoStore) Upsert(ctx context.Context, p *member.Profile) error {
	if p == nil || p.ID == "" {
		return errorskg.Invalid("profile must have an id")
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": p.ID}, toMongo(p), opts); err != nil {
		return fmt.Errorf("failed to upsert member profile: %w", err)
	}
	return nil
}

// Delete removes a member profile.
func (s *MongoStore) Delete(ctx context.Context, memberID string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": memberID})
	if err != nil {
		return fmt.Errorf("failed to delete member profile: %w", err)
	}
	if res.DeletedCount == 0 {
		return errorskg.NotFound("member", memberID)
	}
	return nil
}

// Close closes the MongoDB connection
func (s *MongoStore) Close(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.client.Disconnect(ctx)
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func formatDayPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDay(*t)
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return t, nil
}

func parseDayPtr(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDay(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toMongo(p *member.Profile) mongoProfile {
	doc := mongoProfile{
		ID:                p.ID,
		Name:              p.Name,
		Plan:              p.Plan,
		Tier:              p.Tier,
		Email:             p.Email,
		Phone:             p.Phone,
		Address:           p.Address,
		DateOfBirth:       formatDayPtr(p.DateOfBirth),
		InteractionNotes:  make([]mongoNote, len(p.InteractionNotes)),
		UploadedDocuments: make([]mongoDocument, len(p.UploadedDocuments)),
	}
	for i, n := range p.InteractionNotes {
		doc.InteractionNotes[i] = mongoNote{Date: formatDay(n.Date), Type: n.Type, Agent: n.Agent, Note: n.Note}
	}
	for i, d := range p.UploadedDocuments {
		doc.UploadedDocuments[i] = mongoDocument{
			DocumentID: d.DocumentID,
			Type:       d.Type,
			UploadDate: formatDay(d.UploadDate),
			ValidUntil: formatDayPtr(d.ValidUntil),
			Provider:   d.Provider,
			Reason:     d.Reason,
		}
	}
	if pd := p.PolicyDetails; pd != nil {
		doc.PolicyDetails = &mongoPolicy{
			PlanName:           pd.PlanName,
			StartDate:          formatDay(pd.StartDate),
			RenewalDate:        formatDay(pd.RenewalDate),
			AnnualLimit:        pd.AnnualLimit,
			UsedToDate:         pd.UsedToDate,
			LoyaltyBonusActive: pd.LoyaltyBonusActive,
		}
	}
	return doc
}

func fromMongo(doc mongoProfile) (*member.Profile, error) {
	dob, err := parseDayPtr("date_of_birth", doc.DateOfBirth)
	if err != nil {
		return nil, err
	}
	p := &member.Profile{
		ID:                doc.ID,
		Name:              doc.Name,
		Plan:              doc.Plan,
		Tier:              doc.Tier,
		Email:             doc.Email,
		Phone:             doc.Phone,
		Address:           doc.Address,
		DateOfBirth:       dob,
		InteractionNotes:  make([]member.InteractionNote, 0, len(doc.InteractionNotes)),
		UploadedDocuments: make([]member.Document, 0, len(doc.UploadedDocuments)),
	}
	for _, n := range doc.InteractionNotes {
		date, err := parseDay("note date", n.Date)
		if err != nil {
			return nil, err
		}
		p.InteractionNotes = append(p.InteractionNotes, member.InteractionNote{
			Date: date, Type: n.Type, Agent: n.Agent, Note: n.Note,
		})
	}
	for _, d := range doc.UploadedDocuments {
		uploaded, err := parseDay("upload_date", d.UploadDate)
		if err != nil {
			return nil, err
		}
		validUntil, err := parseDayPtr("valid_until", d.ValidUntil)
		if err != nil {
			return nil, err
		}
		p.UploadedDocuments = append(p.UploadedDocuments, member.Document{
			DocumentID: d.DocumentID,
			Type:       d.Type,
			UploadDate: uploaded,
			ValidUntil: validUntil,
			Provider:   d.Provider,
			Reason:     d.Reason,
		})
	}
	if pd := doc.PolicyDetails; pd != nil {
		start, err := parseDay("start_date", pd.StartDate)
		if err != nil {
			return nil, err
		}
		renewal, err := parseDay("renewal_date", pd.RenewalDate)
		if err != nil {
			return nil, err
		}
		p.PolicyDetails = &member.PolicyDetails{
			PlanName:           pd.PlanName,
			StartDate:          start,
			RenewalDate:        renewal,
			AnnualLimit:        pd.AnnualLimit,
			UsedToDate:         pd.UsedToDate,
			LoyaltyBonusActive: pd.LoyaltyBonusActive,
		}
	}
	return p, nil
}

var _ member.ProfileSource = (*MongoStore)(nil)
