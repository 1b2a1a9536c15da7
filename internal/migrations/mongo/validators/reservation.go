package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"room_id",
			"guest_id",
			"stay",
			"total",
			"status",
			"status_history",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"room_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"guest_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"stay": bson.M{
				"bsonType": "object",
				"required": []string{"check_in", "check_out"},
				"properties": bson.M{
					"check_in":  bson.M{"bsonType": "date"},
					"check_out": bson.M{"bsonType": "date"},
				},
			},

			"extras": bson.M{
				"bsonType": "array",
				"maxItems": 50,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"name", "unit_price"},
					"properties": bson.M{
						"name": bson.M{
							"bsonType":  "string",
							"minLength": 1,
							"maxLength": 100,
						},
						"unit_price": bson.M{
							"bsonType": []string{"double", "int", "long", "decimal"},
							"minimum":  0,
						},
						"description": bson.M{
							"bsonType":  "string",
							"maxLength": 500,
						},
					},
				},
			},

			"total": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"status": bson.M{
				"enum": []string{"pending", "confirmed", "cancelled", "completed"},
			},

			"status_history": bson.M{
				"bsonType": "array",
				"minItems": 1,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"status", "at"},
					"properties": bson.M{
						"status": bson.M{
							"enum": []string{"pending", "confirmed", "cancelled", "completed"},
						},
						"at": bson.M{"bsonType": "date"},
					},
				},
			},

			"opinions": bson.M{
				"bsonType":  "string",
				"maxLength": 2000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
