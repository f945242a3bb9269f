package domain

// DataCardURIs holds the artifact references owned by a DataCard.
type DataCardURIs struct {
	DataURI        string `json:"data_uri,omitempty"`
	ProfileURI     string `json:"profile_uri,omitempty"`
	ProfileHTMLURI string `json:"profile_html_uri,omitempty"`
	DataCardURI    string `json:"datacard_uri,omitempty"`
}

// DataCard registers a dataset. Exactly one of Data or Array may be set.
type DataCard struct {
	CardIdentity

	Data  *Table `json:"-"`
	Array Array  `json:"-"`

	// Profile is optional; absent profiles are not an error on load.
	Profile *DataProfile `json:"-"`

	URIs       DataCardURIs `json:"uris"`
	FeatureMap FeatureMap   `json:"feature_map,omitempty"`
}

// NewDataCard constructs an unregistered DataCard, merging info overrides.
func NewDataCard(name, team string, info *CardInfo) (*DataCard, error) {
	card := &DataCard{CardIdentity: CardIdentity{Name: name, Team: team}}
	card.ApplyInfo(info)
	if err := card.Clean(); err != nil {
		return nil, err
	}
	return card, nil
}

func (c *DataCard) Identity() *CardIdentity { return &c.CardIdentity }
func (c *DataCard) CardType() CardType      { return CardTypeData }

func (c *DataCard) Record() *CardRecord {
	return &CardRecord{
		UID:            c.UID,
		Name:           c.Name,
		Team:           c.Team,
		Email:          c.Email,
		Version:        c.Version,
		Tags:           c.Tags,
		CreatedAt:      c.CreatedAt,
		DataURI:        c.URIs.DataURI,
		ProfileURI:     c.URIs.ProfileURI,
		ProfileHTMLURI: c.URIs.ProfileHTMLURI,
		DataCardURI:    c.URIs.DataCardURI,
		FeatureMap:     c.FeatureMap,
	}
}

// DataCardFromRecord materializes a DataCard from a stored record. Heavy
// payloads stay absent until a loader pulls them.
func DataCardFromRecord(rec *CardRecord) *DataCard {
	return &DataCard{
		CardIdentity: identityFromRecord(rec),
		URIs: DataCardURIs{
			DataURI:        rec.DataURI,
			ProfileURI:     rec.ProfileURI,
			ProfileHTMLURI: rec.ProfileHTMLURI,
			DataCardURI:    rec.DataCardURI,
		},
		FeatureMap: rec.FeatureMap,
	}
}

func identityFromRecord(rec *CardRecord) CardIdentity {
	return CardIdentity{
		Name:      rec.Name,
		Team:      rec.Team,
		Email:     rec.Email,
		UID:       rec.UID,
		Version:   rec.Version,
		Tags:      rec.Tags,
		CreatedAt: rec.CreatedAt,
	}
}
