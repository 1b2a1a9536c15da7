package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"number",
			"type",
			"nightly_rate",
			"capacity",
			"availability",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"number": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},

			"type": bson.M{
				"enum": []string{"standard", "deluxe", "suite", "family", "vip"},
			},

			"nightly_rate": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"capacity": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  20,
			},

			"availability": bson.M{
				"bsonType": "bool",
			},

			"description": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},
		},
	},
}
