package domain

type PropertyID = string

// Property is a rentable listing as stored in the "properties" collection.
// Location and Price are free text; an empty ImageURL means no image.
type Property struct {
	ID       PropertyID `json:"id" bson:"_id"`
	Name     string     `json:"name" bson:"name"`
	Location string     `json:"location" bson:"location"`
	Price    string     `json:"price" bson:"price"`
	ImageURL string     `json:"imageUrl" bson:"imageUrl"`
}

func (p Property) HasImage() bool { return p.ImageURL != "" }
