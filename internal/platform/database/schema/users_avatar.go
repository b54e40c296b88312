package schema

// UserAvatarTable represents the 'users.avatar' table
type UserAvatarTable struct {
	Table         string
	OwnerID       string
	Hairstyle     string
	HairColor     string
	SkinTone      string
	Clothing      string
	ClothingColor string
	CreatedAt     string
	UpdatedAt     string
}

// UserAvatar is the schema definition for users.avatar
var UserAvatar = UserAvatarTable{
	Table:         "users.avatar",
	OwnerID:       "ownerid",
	Hairstyle:     "hairstyle",
	HairColor:     "haircolor",
	SkinTone:      "skintone",
	Clothing:      "clothing",
	ClothingColor: "clothingcolor",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}

// Columns returns all standard column names
func (t UserAvatarTable) Columns() []string {
	return []string{t.OwnerID, t.Hairstyle, t.HairColor, t.SkinTone, t.Clothing, t.ClothingColor, t.CreatedAt, t.UpdatedAt}
}
