package validators

import "go.mongodb.org/mongo-driver/bson"

// SettingsValidator only pins the envelope. Values are typed per key and
// checked by the service before they are written.
var SettingsValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "value", "updated_at"},
		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},
			"description": bson.M{
				"bsonType": "string",
			},
			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
