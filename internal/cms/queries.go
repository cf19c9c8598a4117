package cms

// productProjection is the reusable product shape returned by every product query
const productProjection = `{
  _id,
  title,
  "slug": slug.current,
  price,
  discountPrice,
  inStock,
  quantity,
  featured,
  description,
  "images": images[].asset->url
}`

// ProductsByIDsQuery fetches authoritative snapshots for a set of product ids.
// Missing ids are simply absent from the result, not an error.
const ProductsByIDsQuery = `*[_type == "product" && _id in $ids] ` + productProjection

// AllProductsQuery lists products, newest first
const AllProductsQuery = `*[_type == "product"] | order(_createdAt desc) ` + productProjection

// ProductBySlugQuery fetches a single product by its slug
const ProductBySlugQuery = `*[_type == "product" && slug.current == $slug][0] ` + productProjection

// ProductsByCategoryQuery lists products in a category, newest first
const ProductsByCategoryQuery = `*[_type == "product" && $categorySlug in categories[]->slug.current] | order(_createdAt desc) ` + productProjection

// SearchProductsQuery matches product titles by prefix
const SearchProductsQuery = `*[_type == "product" && title match $search + "*"] | order(_createdAt desc) ` + productProjection

// ProductsByPriceRangeQuery filters by price band, cheapest first
const ProductsByPriceRangeQuery = `*[_type == "product" && price >= $min && price <= $max] | order(price asc) ` + productProjection

// ProductsPriceAscQuery lists products cheapest first
const ProductsPriceAscQuery = `*[_type == "product"] | order(price asc) ` + productProjection

// ProductsPriceDescQuery lists products most expensive first
const ProductsPriceDescQuery = `*[_type == "product"] | order(price desc) ` + productProjection

// FeaturedProductsQuery lists featured products, newest first
const FeaturedProductsQuery = `*[_type == "product" && featured == true] | order(_createdAt desc) ` + productProjection

// PaginatedProductsQuery slices the newest-first product list
const PaginatedProductsQuery = `*[_type == "product"] | order(_createdAt desc)[$start...$end] ` + productProjection

// customerProjection is the customer document shape
const customerProjection = `{
  _id,
  email,
  name,
  userId,
  paymentCustomerId,
  createdAt
}`

// CustomerByUserIDQuery fetches the customer document for an identity-provider user
const CustomerByUserIDQuery = `*[_type == "customer" && userId == $userId][0] ` + customerProjection

// CustomerByEmailQuery fetches a customer document by email
const CustomerByEmailQuery = `*[_type == "customer" && email == $email][0] ` + customerProjection

// OrdersByUserIDQuery lists a shopper's order history, newest first
const OrdersByUserIDQuery = `*[_type == "order" && userId == $userId] | order(createdAt desc) {
  _id,
  orderId,
  status,
  "paymentStatus": payment.status,
  totalAmount,
  createdAt
}`

// OrderByOrderIDQuery fetches one order with its line items
const OrderByOrderIDQuery = `*[_type == "order" && orderId == $orderId][0] {
  _id,
  orderId,
  userId,
  status,
  "paymentStatus": payment.status,
  subtotal,
  shippingCost,
  totalAmount,
  createdAt,
  items[]{
    "productId": product._ref,
    title,
    price,
    quantity
  }
}`
