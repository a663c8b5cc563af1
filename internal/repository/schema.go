package repository

const Schema = `
CREATE TABLE IF NOT EXISTS stock_transactions (
	id UUID PRIMARY KEY,
	seq BIGSERIAL NOT NULL UNIQUE,
	user_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	currency TEXT NOT NULL,
	date DATE NOT NULL,
	quantity BIGINT NOT NULL CHECK (quantity > 0),
	price NUMERIC(30,10) NOT NULL CHECK (price > 0),
	transaction_type TEXT NOT NULL CHECK (transaction_type IN ('BUY', 'SELL'))
);

CREATE INDEX IF NOT EXISTS idx_stock_transactions_key
	ON stock_transactions(user_id, ticker, currency, date, seq);

CREATE TABLE IF NOT EXISTS stock_holdings (
	user_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	currency TEXT NOT NULL,
	quantity BIGINT NOT NULL,
	average_price NUMERIC(30,10) NOT NULL,
	PRIMARY KEY (user_id, ticker, currency)
);

CREATE TABLE IF NOT EXISTS historical_stock_holdings (
	user_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	currency TEXT NOT NULL,
	position INT NOT NULL,
	quantity BIGINT NOT NULL,
	average_price NUMERIC(30,10) NOT NULL,
	start_date DATE NOT NULL,
	end_date DATE,
	PRIMARY KEY (user_id, ticker, currency, position)
);

CREATE TABLE IF NOT EXISTS released_profit_loss (
	user_id TEXT NOT NULL,
	ticker TEXT NOT NULL,
	currency TEXT NOT NULL,
	position INT NOT NULL,
	date DATE NOT NULL,
	amount NUMERIC(30,10) NOT NULL,
	PRIMARY KEY (user_id, ticker, currency, position)
);
`
