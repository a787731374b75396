package validators

import "go.mongodb.org/mongo-driver/bson"

var CourtValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"hourly_rate_cents",
			"is_active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"hourly_rate_cents": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"amenities": bson.M{
				"bsonType": "array",
				"maxItems": 20,
				"items": bson.M{
					"bsonType":  "string",
					"minLength": 2,
					"maxLength": 50,
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
