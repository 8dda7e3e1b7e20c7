package config

// Vocabularies for generated order fields. Values are fixed so that
// filtered reads and aggregations hit a known, bounded key space.

// Categories are the product categories orders are drawn from.
var Categories = []string{
	"Electronics",
	"Books",
	"Clothing",
	"Home & Garden",
	"Sports",
	"Toys",
	"Food & Beverage",
	"Health & Beauty",
	"Automotive",
	"Office Supplies",
	"Pet Supplies",
	"Jewelry",
	"Music",
	"Movies",
	"Video Games",
	"Baby Products",
	"Tools",
	"Outdoor",
	"Furniture",
	"Industrial",
}

// PaymentMethods are the accepted payment method names.
var PaymentMethods = []string{
	"credit_card",
	"debit_card",
	"paypal",
	"bank_transfer",
	"cash_on_delivery",
}

// ShippingCountries are the 50 destination countries orders ship to.
var ShippingCountries = []string{
	"United States",
	"China",
	"Japan",
	"Germany",
	"United Kingdom",
	"France",
	"India",
	"Italy",
	"Brazil",
	"Canada",
	"Russia",
	"South Korea",
	"Spain",
	"Australia",
	"Mexico",
	"Indonesia",
	"Netherlands",
	"Saudi Arabia",
	"Turkey",
	"Switzerland",
	"Poland",
	"Belgium",
	"Sweden",
	"Argentina",
	"Norway",
	"Austria",
	"United Arab Emirates",
	"Nigeria",
	"Israel",
	"Ireland",
	"Denmark",
	"Singapore",
	"Malaysia",
	"South Africa",
	"Colombia",
	"Philippines",
	"Pakistan",
	"Chile",
	"Finland",
	"Bangladesh",
	"Egypt",
	"Vietnam",
	"Czech Republic",
	"Portugal",
	"Romania",
	"Peru",
	"Greece",
	"New Zealand",
	"Qatar",
	"Hungary",
}
