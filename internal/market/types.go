package market

import "encoding/json"

// commoditiesResponse is the body of /data/wow/auctions/commodities.
type commoditiesResponse struct {
	Auctions []auctionRecord `json:"auctions"`
}

type auctionRecord struct {
	ID   int64 `json:"id"`
	Item struct {
		ID int64 `json:"id"`
	} `json:"item"`
	Quantity  int64  `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	TimeLeft  string `json:"time_left"`
}

// tokenResponse is the body of /data/wow/token/index.
type tokenResponse struct {
	LastUpdated int64 `json:"last_updated_timestamp"`
	Price       int64 `json:"price"`
}

// itemResponse is the body of /data/wow/item/{id}. Name is a plain string
// when a locale is requested and a locale map otherwise.
type itemResponse struct {
	ID   int64           `json:"id"`
	Name json.RawMessage `json:"name"`
}
