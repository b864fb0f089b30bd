package model

const ROLE_ADMIN string = "admin"
const ROLE_USER string = "user"

type UserData struct {
	Login          string `json:"login" bson:"_id"`
	HashedPassword string `json:"password_hash" bson:"password_hash,omitempty"`
	Role           string `json:"role" bson:"role,omitempty"`
	Email          string `json:"email" bson:"email,omitempty"`
}
