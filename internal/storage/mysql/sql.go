package mysql

const listPropertiesSQL = `
SELECT id, name, location, price, image_url
FROM properties
ORDER BY id
`

const getPropertySQL = `
SELECT id, name, location, price, image_url
FROM properties
WHERE id = ?
`

const upsertPropertySQL = `
INSERT INTO properties
  (id, name, location, price, image_url)
VALUES
  (?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name       = VALUES(name),
  location   = VALUES(location),
  price      = VALUES(price),
  image_url  = VALUES(image_url),
  updated_at = CURRENT_TIMESTAMP
`

// Append-only: a colliding id is an error, never an overwrite.
const insertBookingSQL = `
INSERT INTO bookings
  (id, user_id, property_id, property_name, property_location, property_price, property_image_url, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
`

const listBookingsSQL = `
SELECT id, user_id, property_id, property_name, property_location, property_price, property_image_url, created_at
FROM bookings
WHERE user_id = ?
ORDER BY created_at DESC, id
`

const insertUserSQL = `
INSERT INTO users (id, email, password_hash, created_at)
VALUES (?, ?, ?, ?)
`

const userByEmailSQL = `
SELECT id, email, password_hash, created_at
FROM users
WHERE email = ?
`

const userByIDSQL = `
SELECT id, email, password_hash, created_at
FROM users
WHERE id = ?
`
