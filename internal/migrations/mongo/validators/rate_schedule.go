package validators

import "go.mongodb.org/mongo-driver/bson"

var RateScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"court_id",
			"name",
			"start_time",
			"end_time",
			"rate_cents",
			"days_of_week",
			"is_active",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"court_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  hhmmPattern,
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  hhmmPattern,
			},

			"rate_cents": bson.M{
				"bsonType": []string{"long", "int"},
				"minimum":  0,
			},

			// ISO weekdays, Monday is 1.
			"days_of_week": bson.M{
				"bsonType":    "array",
				"minItems":    1,
				"maxItems":    7,
				"uniqueItems": true,
				"items": bson.M{
					"bsonType": []string{"int", "long"},
					"minimum":  1,
					"maximum":  7,
				},
			},

			"is_active": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
