package validators

import "go.mongodb.org/mongo-driver/bson"

var PickupRequestValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"user_name",
			"address",
			"phone",
			"waste_type",
			"date",
			"time",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"user_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"user_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 5,
				"maxLength": 300,
			},

			"phone": bson.M{
				"bsonType":  "string",
				"minLength": 6,
				"maxLength": 20,
			},

			"waste_type": bson.M{
				"bsonType": "string",
				"enum": []string{
					"household",
					"plastic",
					"organic",
					"paper",
					"electronic",
					"hazardous",
				},
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  `^\d{4}-\d{2}-\d{2}$`,
			},

			"time": bson.M{
				"bsonType": "string",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pending",
					"assigned",
					"in_progress",
					"completed",
					"cancelled",
				},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},

			"cancelled_by": bson.M{
				"bsonType": "string",
			},

			"cancelled_at": bson.M{
				"bsonType": "date",
			},

			"cancel_reason": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},
		},
	},
}
