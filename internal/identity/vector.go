package identity

import "time"

// Vector is the normalized, read-only snapshot of a user's onchain and
// social identity. It is assembled once per session from the external
// fetch layer and never persisted by the engine. Absent upstream fields
// simply stay at their zero value; the constraint extractor treats zero
// as "no contribution", never as an error.
type Vector struct {
	Address          string     `json:"address"`
	Balance          float64    `json:"balance"` // ETH
	TransactionCount int        `json:"transactionCount"`
	FirstActivity    *time.Time `json:"firstActivity,omitempty"`
	LastActivity     *time.Time `json:"lastActivity,omitempty"`
	TokenCount       int        `json:"tokenCount"`
	NFTCount         int        `json:"nftCount"`
	DefiProtocols    []string   `json:"defiProtocols,omitempty"`
	FollowerCount    int        `json:"followerCount"`
	FollowingCount   int        `json:"followingCount"`
	ETHPrice         *float64   `json:"ethPrice,omitempty"` // absent on price-feed failure
	BTCPrice         *float64   `json:"btcPrice,omitempty"`
}

// snapshot mirrors the wire shape returned by the external data service.
// Every field is optional on the wire; missing sections decode to nil.
type snapshot struct {
	Wallet *struct {
		Balance     float64 `json:"balance"`
		ChainID     int     `json:"chainId"`
		IsConnected bool    `json:"isConnected"`
		Address     string  `json:"address"`
	} `json:"wallet"`
	Onchain *struct {
		TransactionCount     int      `json:"transactionCount"`
		FirstTransactionDate string   `json:"firstTransactionDate"`
		LastActivityDate     string   `json:"lastActivityDate"`
		TokenCount           int      `json:"tokenCount"`
		NFTCount             int      `json:"nftCount"`
		DefiProtocols        []string `json:"defiProtocols"`
		UserType             string   `json:"userType"`
		ActivityLevel        string   `json:"activityLevel"`
	} `json:"onchain"`
	Farcaster *struct {
		FID            int      `json:"fid"`
		Username       string   `json:"username"`
		DisplayName    string   `json:"displayName"`
		PfpURL         string   `json:"pfpUrl"`
		FollowerCount  int      `json:"followerCount"`
		FollowingCount int      `json:"followingCount"`
		Verifications  []string `json:"verifications"`
	} `json:"farcaster"`
	Prices *struct {
		ETH       *float64 `json:"eth"`
		BTC       *float64 `json:"btc"`
		FetchedAt string   `json:"fetchedAt"`
	} `json:"prices"`
}

// vectorFromSnapshot flattens the wire shape into a Vector, tolerating
// any missing section.
func vectorFromSnapshot(s *snapshot) *Vector {
	v := &Vector{}
	if s == nil {
		return v
	}
	if s.Wallet != nil {
		v.Address = s.Wallet.Address
		v.Balance = s.Wallet.Balance
	}
	if s.Onchain != nil {
		v.TransactionCount = s.Onchain.TransactionCount
		v.TokenCount = s.Onchain.TokenCount
		v.NFTCount = s.Onchain.NFTCount
		v.DefiProtocols = s.Onchain.DefiProtocols
		if t, err := time.Parse(time.RFC3339, s.Onchain.FirstTransactionDate); err == nil {
			v.FirstActivity = &t
		}
		if t, err := time.Parse(time.RFC3339, s.Onchain.LastActivityDate); err == nil {
			v.LastActivity = &t
		}
	}
	if s.Farcaster != nil {
		v.FollowerCount = s.Farcaster.FollowerCount
		v.FollowingCount = s.Farcaster.FollowingCount
	}
	if s.Prices != nil {
		v.ETHPrice = s.Prices.ETH
		v.BTCPrice = s.Prices.BTC
	}
	return v
}
