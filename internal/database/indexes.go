package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	_, err := indexes.CreateOne(ctx, emailIndex)
	if err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureUserIndexes: email_unique index created")
	return nil
}

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	categoryIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "category", Value: 1}},
		Options: options.Index().SetName("category_index"),
	}

	log.Println("EnsureProductIndexes: creating category_index index")
	_, err := indexes.CreateOne(ctx, categoryIndex)
	if err != nil {
		log.Println("EnsureProductIndexes: category index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: category_index index created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index().SetName("userId_index"),
		},
		{
			Keys: bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().
				SetName("orderId_unique").
				SetUnique(true),
		},
	}

	log.Println("EnsureOrderIndexes: creating userId_index and orderId_unique indexes")
	_, err := indexes.CreateMany(ctx, models)
	if err != nil {
		log.Println("EnsureOrderIndexes: order index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: order indexes created")
	return nil
}

func EnsureCouponIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("coupons").Indexes()

	// Case-insensitive uniqueness so SAVE100 and save100 cannot coexist.
	nameIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
		Options: options.Index().
			SetName("name_unique_ci").
			SetUnique(true).
			SetCollation(&options.Collation{Locale: "en", Strength: 2}),
	}

	log.Println("EnsureCouponIndexes: creating name_unique_ci index")
	_, err := indexes.CreateOne(ctx, nameIndex)
	if err != nil {
		log.Println("EnsureCouponIndexes: name index error:", err)
		return err
	}
	log.Println("EnsureCouponIndexes: name_unique_ci index created")
	return nil
}

func EnsureWalletIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("wallets").Indexes()

	userIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetName("userId_unique").
			SetUnique(true),
	}

	log.Println("EnsureWalletIndexes: creating userId_unique index")
	_, err := indexes.CreateOne(ctx, userIndex)
	if err != nil {
		log.Println("EnsureWalletIndexes: wallet index error:", err)
		return err
	}
	log.Println("EnsureWalletIndexes: userId_unique index created")
	return nil
}

func EnsureOfferIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	productOfferIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "productId", Value: 1}},
		Options: options.Index().SetName("productId_index"),
	}
	categoryOfferIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "categoryId", Value: 1}},
		Options: options.Index().SetName("categoryId_index"),
	}

	log.Println("EnsureOfferIndexes: creating offer target indexes")
	if _, err := db.Collection("product_offers").Indexes().CreateOne(ctx, productOfferIndex); err != nil {
		log.Println("EnsureOfferIndexes: product offer index error:", err)
		return err
	}
	if _, err := db.Collection("category_offers").Indexes().CreateOne(ctx, categoryOfferIndex); err != nil {
		log.Println("EnsureOfferIndexes: category offer index error:", err)
		return err
	}
	log.Println("EnsureOfferIndexes: offer target indexes created")
	return nil
}
