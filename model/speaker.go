package model

type Speaker struct {
	Id   string `json:"_id" bson:"_id"`
	Name string `json:"name" bson:"name"`
	Bio  string `json:"bio" bson:"bio"`
}
