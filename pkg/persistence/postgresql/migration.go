package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Create flow_invocations table
			CREATE TABLE flow_invocations (
				id VARCHAR(255) PRIMARY KEY,
				flow VARCHAR(255) NOT NULL,
				outcome VARCHAR(50) NOT NULL CHECK (outcome IN ('success', 'failure')),
				input JSONB,
				output JSONB,
				error_kind VARCHAR(50),
				error_reason VARCHAR(100),
				error_message TEXT,
				violations JSONB,
				attempts INT NOT NULL DEFAULT 1,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				duration_ns BIGINT NOT NULL DEFAULT 0
			);

			CREATE INDEX idx_flow_invocations_flow_created_at ON flow_invocations(flow, created_at DESC);
			CREATE INDEX idx_flow_invocations_created_at ON flow_invocations(created_at DESC);
		`,
	}
}
