package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/revxrent/storefront/internal/domain"
	"github.com/revxrent/storefront/internal/jobs"
)

// Mongo is the production Store backed by MongoDB. Money values are
// stored as decimal strings to keep them exact across the wire.
type Mongo struct {
	client        *mongo.Client
	orders        *mongo.Collection
	carts         *mongo.Collection
	wishlists     *mongo.Collection
	products      *mongo.Collection
	notifications *mongo.Collection
}

// NewMongo connects to the cluster at uri and binds the collections
// under database.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	return &Mongo{
		client:        client,
		orders:        db.Collection("orders"),
		carts:         db.Collection("carts"),
		wishlists:     db.Collection("wishlists"),
		products:      db.Collection("products"),
		notifications: db.Collection("notifications"),
	}, nil
}

// Close disconnects the underlying client.
func (s *Mongo) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Mongo) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Document types. Decimal fields are strings; conversion happens at
// the boundary so the rest of the code only sees decimal.Decimal.

type rentalDetailsDoc struct {
	Unit        string    `bson:"unit"`
	Rate        string    `bson:"rate"`
	Duration    int       `bson:"duration"`
	ReturnDueAt time.Time `bson:"returnDueAt"`
}

type lineItemDoc struct {
	ProductRef string            `bson:"productRef"`
	Name       string            `bson:"name"`
	UnitPrice  string            `bson:"unitPrice"`
	Quantity   int               `bson:"quantity"`
	Mode       string            `bson:"mode"`
	Rental     *rentalDetailsDoc `bson:"rentalDetails,omitempty"`
	Image      string            `bson:"image,omitempty"`
}

type offerDoc struct {
	Type        string `bson:"type"`
	Value       string `bson:"value"`
	Description string `bson:"description,omitempty"`
}

type originalValuesDoc struct {
	Subtotal    string `bson:"subtotal"`
	Tax         string `bson:"tax"`
	ShippingFee string `bson:"shippingFee"`
	Total       string `bson:"total"`
	TaxRate     string `bson:"taxRate"`
}

type orderDoc struct {
	ID             string             `bson:"_id"`
	OrderNumber    string             `bson:"orderNumber"`
	UserRef        string             `bson:"userRef"`
	Items          []lineItemDoc      `bson:"items"`
	Customer       domain.CustomerInfo `bson:"customer"`
	Status         string             `bson:"status"`
	PaymentEnabled bool               `bson:"paymentEnabled"`
	Subtotal       string             `bson:"subtotal"`
	Tax            string             `bson:"tax"`
	ShippingFee    string             `bson:"shippingFee"`
	Total          string             `bson:"total"`
	Offer          offerDoc           `bson:"offer"`
	OriginalValues *originalValuesDoc `bson:"originalValues,omitempty"`
	HasRentalItems bool               `bson:"hasRentalItems"`
	HasMixedItems  bool               `bson:"hasMixedItems"`
	Revision       int64              `bson:"revision"`
	OrderedAt      time.Time          `bson:"orderedAt"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toOrderDoc(o *domain.Order) orderDoc {
	doc := orderDoc{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		UserRef:        o.UserRef,
		Customer:       o.Customer,
		Status:         string(o.Status),
		PaymentEnabled: o.PaymentEnabled,
		Subtotal:       o.Subtotal.String(),
		Tax:            o.Tax.String(),
		ShippingFee:    o.ShippingFee.String(),
		Total:          o.Total.String(),
		Offer:          toOfferDoc(o.Offer),
		HasRentalItems: o.HasRentalItems,
		HasMixedItems:  o.HasMixedItems,
		Revision:       o.Revision,
		OrderedAt:      o.OrderedAt,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
	for _, item := range o.Items {
		doc.Items = append(doc.Items, toLineItemDoc(item))
	}
	if o.OriginalValues != nil {
		doc.OriginalValues = &originalValuesDoc{
			Subtotal:    o.OriginalValues.Subtotal.String(),
			Tax:         o.OriginalValues.Tax.String(),
			ShippingFee: o.OriginalValues.ShippingFee.String(),
			Total:       o.OriginalValues.Total.String(),
			TaxRate:     o.OriginalValues.TaxRate.String(),
		}
	}
	return doc
}

func toLineItemDoc(item domain.LineItem) lineItemDoc {
	doc := lineItemDoc{
		ProductRef: item.ProductRef,
		Name:       item.Name,
		UnitPrice:  item.UnitPrice.String(),
		Quantity:   item.Quantity,
		Mode:       string(item.Mode),
		Image:      item.Image,
	}
	if item.Rental != nil {
		doc.Rental = &rentalDetailsDoc{
			Unit:        string(item.Rental.Unit),
			Rate:        item.Rental.Rate.String(),
			Duration:    item.Rental.Duration,
			ReturnDueAt: item.Rental.ReturnDueAt,
		}
	}
	return doc
}

func toOfferDoc(o domain.Offer) offerDoc {
	return offerDoc{Type: string(o.Type), Value: o.Value.String(), Description: o.Description}
}

func parseMoney(field, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse stored %s %q: %w", field, raw, err)
	}
	return d, nil
}

func fromOrderDoc(doc orderDoc) (*domain.Order, error) {
	o := &domain.Order{
		ID:             doc.ID,
		OrderNumber:    doc.OrderNumber,
		UserRef:        doc.UserRef,
		Customer:       doc.Customer,
		Status:         domain.OrderStatus(doc.Status),
		PaymentEnabled: doc.PaymentEnabled,
		HasRentalItems: doc.HasRentalItems,
		HasMixedItems:  doc.HasMixedItems,
		Revision:       doc.Revision,
		OrderedAt:      doc.OrderedAt,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}

	var err error
	if o.Subtotal, err = parseMoney("subtotal", doc.Subtotal); err != nil {
		return nil, err
	}
	if o.Tax, err = parseMoney("tax", doc.Tax); err != nil {
		return nil, err
	}
	if o.ShippingFee, err = parseMoney("shippingFee", doc.ShippingFee); err != nil {
		return nil, err
	}
	if o.Total, err = parseMoney("total", doc.Total); err != nil {
		return nil, err
	}

	offerValue, err := parseMoney("offer.value", doc.Offer.Value)
	if err != nil {
		return nil, err
	}
	o.Offer = domain.Offer{
		Type:        domain.OfferType(doc.Offer.Type),
		Value:       offerValue,
		Description: doc.Offer.Description,
	}
	if o.Offer.Type == "" {
		o.Offer = domain.NoOffer()
	}

	for _, itemDoc := range doc.Items {
		item, err := fromLineItemDoc(itemDoc)
		if err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}

	if doc.OriginalValues != nil {
		ov := &domain.OriginalValues{}
		if ov.Subtotal, err = parseMoney("originalValues.subtotal", doc.OriginalValues.Subtotal); err != nil {
			return nil, err
		}
		if ov.Tax, err = parseMoney("originalValues.tax", doc.OriginalValues.Tax); err != nil {
			return nil, err
		}
		if ov.ShippingFee, err = parseMoney("originalValues.shippingFee", doc.OriginalValues.ShippingFee); err != nil {
			return nil, err
		}
		if ov.Total, err = parseMoney("originalValues.total", doc.OriginalValues.Total); err != nil {
			return nil, err
		}
		if ov.TaxRate, err = parseMoney("originalValues.taxRate", doc.OriginalValues.TaxRate); err != nil {
			return nil, err
		}
		o.OriginalValues = ov
	}

	return o, nil
}

func fromLineItemDoc(doc lineItemDoc) (domain.LineItem, error) {
	item := domain.LineItem{
		ProductRef: doc.ProductRef,
		Name:       doc.Name,
		Quantity:   doc.Quantity,
		Mode:       domain.ItemMode(doc.Mode),
		Image:      doc.Image,
	}
	var err error
	if item.UnitPrice, err = parseMoney("unitPrice", doc.UnitPrice); err != nil {
		return domain.LineItem{}, err
	}
	if doc.Rental != nil {
		rate, err := parseMoney("rental.rate", doc.Rental.Rate)
		if err != nil {
			return domain.LineItem{}, err
		}
		item.Rental = &domain.RentalDetails{
			Unit:        domain.RentalUnit(doc.Rental.Unit),
			Rate:        rate,
			Duration:    doc.Rental.Duration,
			ReturnDueAt: doc.Rental.ReturnDueAt,
		}
	}
	return item, nil
}

func (s *Mongo) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.Revision == 0 {
		order.Revision = 1
	}
	if _, err := s.orders.InsertOne(ctx, toOrderDoc(order)); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (s *Mongo) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	var doc orderDoc
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	return fromOrderDoc(doc)
}

func (s *Mongo) ListOrders(ctx context.Context, filter OrderFilter) ([]*domain.Order, error) {
	query := bson.M{}
	if filter.UserRef != "" {
		query["userRef"] = filter.UserRef
	}

	opts := options.Find().SetSort(bson.D{{Key: "orderedAt", Value: -1}})
	cursor, err := s.orders.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}

	out := make([]*domain.Order, 0, len(docs))
	for _, doc := range docs {
		o, err := fromOrderDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *Mongo) UpdateOrder(ctx context.Context, id string, expectedRevision int64, patch OrderPatch) (*domain.Order, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Status != nil {
		set["status"] = string(*patch.Status)
	}
	if patch.PaymentEnabled != nil {
		set["paymentEnabled"] = *patch.PaymentEnabled
	}
	if patch.ShippingFee != nil {
		set["shippingFee"] = patch.ShippingFee.String()
	}
	if patch.Tax != nil {
		set["tax"] = patch.Tax.String()
	}
	if patch.Subtotal != nil {
		set["subtotal"] = patch.Subtotal.String()
	}
	if patch.Total != nil {
		set["total"] = patch.Total.String()
	}
	if patch.Offer != nil {
		set["offer"] = toOfferDoc(*patch.Offer)
	}
	if patch.OriginalValues != nil {
		set["originalValues"] = originalValuesDoc{
			Subtotal:    patch.OriginalValues.Subtotal.String(),
			Tax:         patch.OriginalValues.Tax.String(),
			ShippingFee: patch.OriginalValues.ShippingFee.String(),
			Total:       patch.OriginalValues.Total.String(),
			TaxRate:     patch.OriginalValues.TaxRate.String(),
		}
	}

	// Matching on both _id and revision makes the update conditional:
	// a concurrent writer bumps revision and this filter stops matching.
	filter := bson.M{"_id": id, "revision": expectedRevision}
	update := bson.M{"$set": set, "$inc": bson.M{"revision": 1}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc orderDoc
	err := s.orders.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Disambiguate: missing document vs stale revision.
		count, countErr := s.orders.CountDocuments(ctx, bson.M{"_id": id})
		if countErr != nil {
			return nil, fmt.Errorf("failed to check order existence: %w", countErr)
		}
		if count == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrRevisionConflict
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return fromOrderDoc(doc)
}

type cartDoc struct {
	UserRef   string        `bson:"_id"`
	Items     []lineItemDoc `bson:"items"`
	AddedAt   []time.Time   `bson:"addedAt"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}

func toCartDoc(c *domain.Cart) cartDoc {
	doc := cartDoc{UserRef: c.UserRef, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
	for _, item := range c.Items {
		doc.Items = append(doc.Items, toLineItemDoc(item.LineItem()))
		doc.AddedAt = append(doc.AddedAt, item.AddedAt)
	}
	return doc
}

func fromCartDoc(doc cartDoc) (*domain.Cart, error) {
	c := &domain.Cart{UserRef: doc.UserRef, Items: []domain.CartItem{}, CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt}
	for i, itemDoc := range doc.Items {
		li, err := fromLineItemDoc(itemDoc)
		if err != nil {
			return nil, err
		}
		item := domain.CartItem{
			ProductRef: li.ProductRef,
			Name:       li.Name,
			UnitPrice:  li.UnitPrice,
			Quantity:   li.Quantity,
			Mode:       li.Mode,
			Rental:     li.Rental,
			Image:      li.Image,
		}
		if i < len(doc.AddedAt) {
			item.AddedAt = doc.AddedAt[i]
		}
		c.Items = append(c.Items, item)
	}
	return c, nil
}

func (s *Mongo) GetCart(ctx context.Context, userRef string) (*domain.Cart, error) {
	var doc cartDoc
	err := s.carts.FindOne(ctx, bson.M{"_id": userRef}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}
	return fromCartDoc(doc)
}

func (s *Mongo) PutCart(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	opts := options.Replace().SetUpsert(true)
	if _, err := s.carts.ReplaceOne(ctx, bson.M{"_id": cart.UserRef}, toCartDoc(cart), opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

func (s *Mongo) DeleteCart(ctx context.Context, userRef string) error {
	if _, err := s.carts.DeleteOne(ctx, bson.M{"_id": userRef}); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

type wishlistDoc struct {
	UserRef   string                `bson:"_id"`
	Items     []domain.WishlistItem `bson:"items"`
	CreatedAt time.Time             `bson:"createdAt"`
	UpdatedAt time.Time             `bson:"updatedAt"`
}

func (s *Mongo) GetWishlist(ctx context.Context, userRef string) (*domain.Wishlist, error) {
	var doc wishlistDoc
	err := s.wishlists.FindOne(ctx, bson.M{"_id": userRef}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wishlist: %w", err)
	}
	return &domain.Wishlist{
		UserRef:   doc.UserRef,
		Items:     doc.Items,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *Mongo) PutWishlist(ctx context.Context, wishlist *domain.Wishlist) error {
	wishlist.UpdatedAt = time.Now().UTC()
	doc := wishlistDoc{
		UserRef:   wishlist.UserRef,
		Items:     wishlist.Items,
		CreatedAt: wishlist.CreatedAt,
		UpdatedAt: wishlist.UpdatedAt,
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.wishlists.ReplaceOne(ctx, bson.M{"_id": wishlist.UserRef}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert wishlist: %w", err)
	}
	return nil
}

func (s *Mongo) DeleteWishlist(ctx context.Context, userRef string) error {
	if _, err := s.wishlists.DeleteOne(ctx, bson.M{"_id": userRef}); err != nil {
		return fmt.Errorf("failed to delete wishlist: %w", err)
	}
	return nil
}

type productDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Price       string    `bson:"price"`
	Brand       string    `bson:"brand,omitempty"`
	Category    string    `bson:"category,omitempty"`
	Image       string    `bson:"image,omitempty"`
	IsRentable  bool      `bson:"isRentable"`
	RentalHour  string    `bson:"rentalHourly,omitempty"`
	RentalDaily string    `bson:"rentalDaily,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (s *Mongo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDoc
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product: %w", err)
	}

	p := &domain.Product{
		ID:         doc.ID,
		Name:       doc.Name,
		Brand:      doc.Brand,
		Category:   doc.Category,
		Image:      doc.Image,
		IsRentable: doc.IsRentable,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}
	if p.Price, err = parseMoney("price", doc.Price); err != nil {
		return nil, err
	}
	if doc.IsRentable {
		hourly, err := parseMoney("rentalHourly", doc.RentalHour)
		if err != nil {
			return nil, err
		}
		daily, err := parseMoney("rentalDaily", doc.RentalDaily)
		if err != nil {
			return nil, err
		}
		p.RentalPrice = &domain.RentalPricing{Hourly: hourly, Daily: daily}
	}
	return p, nil
}

func (s *Mongo) PutProduct(ctx context.Context, product *domain.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	product.UpdatedAt = time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = product.UpdatedAt
	}

	doc := productDoc{
		ID:         product.ID,
		Name:       product.Name,
		Price:      product.Price.String(),
		Brand:      product.Brand,
		Category:   product.Category,
		Image:      product.Image,
		IsRentable: product.IsRentable,
		CreatedAt:  product.CreatedAt,
		UpdatedAt:  product.UpdatedAt,
	}
	if product.RentalPrice != nil {
		doc.RentalHour = product.RentalPrice.Hourly.String()
		doc.RentalDaily = product.RentalPrice.Daily.String()
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := s.products.ReplaceOne(ctx, bson.M{"_id": product.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func (s *Mongo) EnqueueNotification(ctx context.Context, n *jobs.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	n.Status = jobs.StatusPending
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	if _, err := s.notifications.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	return nil
}

func (s *Mongo) ClaimNextNotification(ctx context.Context) (*jobs.Notification, error) {
	// Claiming flips the status so concurrent workers never pick up
	// the same notification twice.
	filter := bson.M{"status": jobs.StatusPending}
	update := bson.M{"$set": bson.M{"status": jobs.StatusClaimed, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetReturnDocument(options.After)

	var n jobs.Notification
	err := s.notifications.FindOneAndUpdate(ctx, filter, update, opts).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim notification: %w", err)
	}
	return &n, nil
}

func (s *Mongo) CompleteNotification(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"status": jobs.StatusDelivered, "updatedAt": time.Now().UTC()}}
	res, err := s.notifications.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to complete notification: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Mongo) FailNotification(ctx context.Context, id string, attempts int, lastError string, terminal bool) error {
	status := jobs.StatusPending
	if terminal {
		status = jobs.StatusFailed
	}
	update := bson.M{"$set": bson.M{
		"status":    status,
		"attempts":  attempts,
		"lastError": lastError,
		"updatedAt": time.Now().UTC(),
	}}
	res, err := s.notifications.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to record notification failure: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
