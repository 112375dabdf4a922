package models

import "time"

// ReportSnapshot is an archived period report stored in MongoDB.
type ReportSnapshot struct {
	ID          string            `bson:"_id" json:"id"`
	Period      string            `bson:"period" json:"period"`
	From        time.Time         `bson:"from" json:"from"`
	To          time.Time         `bson:"to" json:"to"`
	TotalCost   string            `bson:"total_cost" json:"total_cost"`
	TotalPrice  string            `bson:"total_price" json:"total_price"`
	TotalProfit string            `bson:"total_profit" json:"total_profit"`
	Margin      string            `bson:"margin" json:"margin"`
	Products    []SnapshotProduct `bson:"products" json:"products"`
	CreatedAt   time.Time         `bson:"created_at" json:"created_at"`
}

// SnapshotProduct is one product line of a ReportSnapshot.
type SnapshotProduct struct {
	ProductID int64   `bson:"product_id" json:"product_id"`
	Product   string  `bson:"product" json:"product"`
	Quantity  float64 `bson:"quantity" json:"quantity"`
	Cost      string  `bson:"cost" json:"cost"`
	Price     string  `bson:"price" json:"price"`
	Profit    string  `bson:"profit" json:"profit"`
}
