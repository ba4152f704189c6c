package validators

import "go.mongodb.org/mongo-driver/bson"

var NotificationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"user_id",
			"request_id",
			"kind",
			"title",
			"body",
			"read",
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

			"request_id": bson.M{
				"bsonType": "string",
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum": []string{
					"pickup_created",
					"pickup_rescheduled",
					"pickup_cancelled",
				},
			},

			"title": bson.M{
				"bsonType": "string",
			},

			"body": bson.M{
				"bsonType": "string",
			},

			"read": bson.M{
				"bsonType": "bool",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
